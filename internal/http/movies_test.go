package httpserver

import (
	"net/url"
	"testing"

	"github.com/cinescore/cinescore/internal/config"
)

func filterServer() *Server {
	return &Server{cfg: config.Config{DefaultPageSize: 12, MaxPageSize: 100}}
}

func TestBuildMovieFilters(t *testing.T) {
	srv := filterServer()

	tests := []struct {
		name      string
		query     url.Values
		wantTitle string
		wantPage  int
		wantSize  int
		wantErr   bool
	}{
		{
			name:     "defaults",
			query:    url.Values{},
			wantPage: 0,
			wantSize: 12,
		},
		{
			name:      "title trimmed",
			query:     url.Values{"title": {"  Vingadores  "}},
			wantTitle: "Vingadores",
			wantPage:  0,
			wantSize:  12,
		},
		{
			name:     "explicit page and size",
			query:    url.Values{"page": {"2"}, "size": {"5"}},
			wantPage: 2,
			wantSize: 5,
		},
		{
			name:     "size capped",
			query:    url.Values{"size": {"500"}},
			wantPage: 0,
			wantSize: 100,
		},
		{
			name:    "negative page",
			query:   url.Values{"page": {"-1"}},
			wantErr: true,
		},
		{
			name:    "non-numeric page",
			query:   url.Values{"page": {"abc"}},
			wantErr: true,
		},
		{
			name:    "zero size",
			query:   url.Values{"size": {"0"}},
			wantErr: true,
		},
		{
			name:    "non-numeric size",
			query:   url.Values{"size": {"big"}},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			filters, err := srv.buildMovieFilters(tc.query)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", filters)
				}
				return
			}
			if err != nil {
				t.Fatalf("buildMovieFilters: %v", err)
			}
			if filters.Title != tc.wantTitle || filters.Page != tc.wantPage || filters.Size != tc.wantSize {
				t.Fatalf("filters = %+v", filters)
			}
		})
	}
}

func FuzzBuildMovieFilters(f *testing.F) {
	f.Add("Vingadores", "0", "12")
	f.Add("", "-1", "0")
	f.Add("  spaced  ", "abc", "999999")

	srv := filterServer()
	f.Fuzz(func(t *testing.T, title, page, size string) {
		query := url.Values{}
		if title != "" {
			query.Set("title", title)
		}
		if page != "" {
			query.Set("page", page)
		}
		if size != "" {
			query.Set("size", size)
		}

		filters, err := srv.buildMovieFilters(query)
		if err != nil {
			return
		}
		if filters.Page < 0 {
			t.Fatalf("accepted negative page: %+v", filters)
		}
		if filters.Size <= 0 || filters.Size > srv.cfg.MaxPageSize {
			t.Fatalf("size out of range: %+v", filters)
		}
	})
}
