package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cinescore/cinescore/internal/auth"
	"github.com/cinescore/cinescore/internal/cache"
	"github.com/cinescore/cinescore/internal/domain"
	"github.com/cinescore/cinescore/internal/repository"
	"github.com/cinescore/cinescore/internal/validation"
)

const maxRequestBody = 1 << 20 // 1 MiB

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type movieCreateRequest struct {
	Title string  `json:"title"`
	Image string  `json:"image"`
	Score float64 `json:"score"`
	Count int64   `json:"count"`
}

type movieResponse struct {
	ID    int64   `json:"id"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
	Count int64   `json:"count"`
	Image string  `json:"image"`
}

type moviePageResponse struct {
	Content       []movieResponse `json:"content"`
	Number        int             `json:"number"`
	Size          int             `json:"size"`
	TotalElements int64           `json:"totalElements"`
	TotalPages    int             `json:"totalPages"`
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	filters, err := s.buildMovieFilters(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	key := cache.PageKey(filters.Title, filters.Page, filters.Size)
	if page, ok := s.cache.GetPage(r.Context(), key); ok {
		s.respondJSON(w, http.StatusOK, toMoviePageResponse(page))
		return
	}

	page, err := s.repo.Movies.List(r.Context(), filters)
	if err != nil {
		s.logger.Printf("list movies error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list movies")
		return
	}
	s.cache.SetPage(r.Context(), key, page)

	s.respondJSON(w, http.StatusOK, toMoviePageResponse(page))
}

// buildMovieFilters parses the title filter and pagination query parameters,
// applying the configured default and cap for page size.
func (s *Server) buildMovieFilters(query url.Values) (repository.MovieListFilters, error) {
	filters := repository.MovieListFilters{
		Title: strings.TrimSpace(query.Get("title")),
		Page:  0,
		Size:  s.cfg.DefaultPageSize,
	}

	if val := strings.TrimSpace(query.Get("page")); val != "" {
		page, err := strconv.Atoi(val)
		if err != nil || page < 0 {
			return filters, fmt.Errorf("invalid page value")
		}
		filters.Page = page
	}
	if val := strings.TrimSpace(query.Get("size")); val != "" {
		size, err := strconv.Atoi(val)
		if err != nil || size <= 0 {
			return filters, fmt.Errorf("invalid size value")
		}
		if size > s.cfg.MaxPageSize {
			size = s.cfg.MaxPageSize
		}
		filters.Size = size
	}
	return filters, nil
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid movie id")
		return
	}

	if movie, ok := s.cache.GetMovie(r.Context(), id); ok {
		s.respondJSON(w, http.StatusOK, toMovieResponse(movie))
		return
	}

	movie, err := s.repo.Movies.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.logger.Printf("get movie %d error: %v", id, err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch movie")
		return
	}
	s.cache.SetMovie(r.Context(), movie)

	s.respondJSON(w, http.StatusOK, toMovieResponse(movie))
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	principal, err := s.verifier.Resolve(r.Header.Get("Authorization"))
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}
	if err := auth.Authorize(principal, auth.OpCreateMovie); err != nil {
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
		return
	}

	var req movieCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := validation.MovieCreate(req.Title); err != nil {
		s.respondValidationError(w, err)
		return
	}

	movie, err := s.repo.Movies.Create(r.Context(), repository.MovieCreateParams{
		Title: strings.TrimSpace(req.Title),
		Image: strings.TrimSpace(req.Image),
		Score: req.Score,
		Count: req.Count,
	})
	if err != nil {
		s.logger.Printf("create movie error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create movie")
		return
	}
	s.cache.InvalidateLists(r.Context())

	w.Header().Set("Location", fmt.Sprintf("/movies/%d", movie.ID))
	s.respondJSON(w, http.StatusCreated, toMovieResponse(movie))
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Printf("failed to encode response: %v", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// respondValidationError renders an accumulated validation result as a 422
// with one entry per field error.
func (s *Server) respondValidationError(w http.ResponseWriter, err error) {
	var invalid *validation.Invalid
	if !errors.As(err, &invalid) {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return
	}
	s.respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
		Code:    "VALIDATION_ERROR",
		Message: "Invalid payload",
		Details: invalid.Errors,
	})
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Malformed JSON payload")
	case errors.As(err, &typeError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", fmt.Sprintf("Invalid value for field %s", typeError.Field))
	case errors.Is(err, io.EOF):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Request body cannot be empty")
	default:
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unable to parse request body")
	}
}

func toMovieResponse(movie domain.Movie) movieResponse {
	return movieResponse{
		ID:    movie.ID,
		Title: movie.Title,
		Score: movie.Score,
		Count: movie.Count,
		Image: movie.Image,
	}
}

func toMoviePageResponse(page repository.MoviePage) moviePageResponse {
	content := make([]movieResponse, 0, len(page.Items))
	for _, movie := range page.Items {
		content = append(content, toMovieResponse(movie))
	}
	return moviePageResponse{
		Content:       content,
		Number:        page.Page,
		Size:          page.Size,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
	}
}
