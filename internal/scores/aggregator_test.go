package scores

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"sync"
	"testing"

	"github.com/cinescore/cinescore/internal/domain"
	"github.com/cinescore/cinescore/internal/repository"
)

// memStore is an in-memory Store with the same CAS semantics as the
// repository implementation.
type memStore struct {
	mu     sync.Mutex
	movies map[int64]domain.Movie
}

func newMemStore(movies ...domain.Movie) *memStore {
	s := &memStore{movies: make(map[int64]domain.Movie)}
	for _, m := range movies {
		s.movies[m.ID] = m
	}
	return s
}

func (s *memStore) GetByID(ctx context.Context, id int64) (domain.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.movies[id]
	if !ok {
		return domain.Movie{}, repository.ErrNotFound
	}
	return m, nil
}

func (s *memStore) CompareAndSwapScore(ctx context.Context, id, expectedCount int64, score float64, count int64) (domain.Movie, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.movies[id]
	if !ok || m.Count != expectedCount {
		return domain.Movie{}, false, nil
	}
	m.Score = score
	m.Count = count
	s.movies[id] = m
	return m, true, nil
}

// contestedStore loses the CAS a fixed number of times before delegating.
type contestedStore struct {
	*memStore
	mu     sync.Mutex
	losses int
}

func (s *contestedStore) CompareAndSwapScore(ctx context.Context, id, expectedCount int64, score float64, count int64) (domain.Movie, bool, error) {
	s.mu.Lock()
	lose := s.losses > 0
	if lose {
		s.losses--
	}
	s.mu.Unlock()
	if lose {
		return domain.Movie{}, false, nil
	}
	return s.memStore.CompareAndSwapScore(ctx, id, expectedCount, score, count)
}

func testAggregator(store Store) *Aggregator {
	return New(store, log.New(io.Discard, "", 0))
}

func TestApply_FirstSubmission(t *testing.T) {
	for _, s := range []float64{0, 1.5, 5} {
		store := newMemStore(domain.Movie{ID: 1, Title: "The Witcher"})
		agg := testAggregator(store)

		movie, err := agg.Apply(context.Background(), 1, s)
		if err != nil {
			t.Fatalf("Apply(%v): %v", s, err)
		}
		if movie.Score != s {
			t.Fatalf("score = %v, want %v", movie.Score, s)
		}
		if movie.Count != 1 {
			t.Fatalf("count = %d, want 1", movie.Count)
		}
	}
}

func TestApply_SequentialMean(t *testing.T) {
	store := newMemStore(domain.Movie{ID: 1, Title: "The Witcher"})
	agg := testAggregator(store)

	submissions := []float64{4, 2, 5, 3.5, 0, 1}
	var sum float64
	for _, s := range submissions {
		sum += s
		if _, err := agg.Apply(context.Background(), 1, s); err != nil {
			t.Fatalf("Apply(%v): %v", s, err)
		}
	}

	movie, err := store.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if movie.Count != int64(len(submissions)) {
		t.Fatalf("count = %d, want %d", movie.Count, len(submissions))
	}
	want := sum / float64(len(submissions))
	if math.Abs(movie.Score-want) > 1e-9 {
		t.Fatalf("score = %v, want mean %v", movie.Score, want)
	}
}

func TestApply_UnknownMovie(t *testing.T) {
	agg := testAggregator(newMemStore())

	_, err := agg.Apply(context.Background(), 99, 4)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("Apply = %v, want ErrNotFound", err)
	}
}

func TestApply_ConcurrentSubmissionsConverge(t *testing.T) {
	store := newMemStore(domain.Movie{ID: 1, Title: "Concurrent Movie"})
	agg := testAggregator(store)

	const workers = 50
	var wg sync.WaitGroup
	var sum float64
	for i := 0; i < workers; i++ {
		s := float64(i%6) * 0.9 // spread over [0, 4.5]
		sum += s
		wg.Add(1)
		go func(s float64) {
			defer wg.Done()
			// ErrConflict guarantees nothing was applied, so resubmitting
			// keeps the exactly-once accounting intact.
			for {
				_, err := agg.Apply(context.Background(), 1, s)
				if err == nil {
					return
				}
				if !errors.Is(err, ErrConflict) {
					t.Errorf("Apply(%v): %v", s, err)
					return
				}
			}
		}(s)
	}
	wg.Wait()

	movie, err := store.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if movie.Count != workers {
		t.Fatalf("count = %d, want %d (each submission applied exactly once)", movie.Count, workers)
	}
	want := sum / workers
	if math.Abs(movie.Score-want) > 1e-6 {
		t.Fatalf("score = %v, want order-independent mean %v", movie.Score, want)
	}
}

func TestApply_RetriesThenSucceeds(t *testing.T) {
	store := &contestedStore{
		memStore: newMemStore(domain.Movie{ID: 1, Title: "Contested"}),
		losses:   maxAttempts - 1,
	}
	agg := testAggregator(store)

	movie, err := agg.Apply(context.Background(), 1, 3)
	if err != nil {
		t.Fatalf("Apply should succeed on the last attempt: %v", err)
	}
	if movie.Count != 1 || movie.Score != 3 {
		t.Fatalf("aggregate = (%v, %d), want (3, 1)", movie.Score, movie.Count)
	}
}

func TestApply_ConflictExhaustion(t *testing.T) {
	store := &contestedStore{
		memStore: newMemStore(domain.Movie{ID: 1, Title: "Contested"}),
		losses:   maxAttempts,
	}
	agg := testAggregator(store)

	_, err := agg.Apply(context.Background(), 1, 3)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("Apply = %v, want ErrConflict", err)
	}

	// Nothing may have been applied on the way out.
	movie, _ := store.GetByID(context.Background(), 1)
	if movie.Count != 0 {
		t.Fatalf("count = %d, want 0 after exhausted retries", movie.Count)
	}
}

func TestNext(t *testing.T) {
	cases := []struct {
		score     float64
		count     int64
		submitted float64
		wantScore float64
		wantCount int64
	}{
		{0, 0, 4, 4, 1},
		{4, 1, 2, 3, 2},
		{3, 2, 3, 3, 3},
		{2.5, 4, 5, 3, 5},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("(%v,%d)+%v", c.score, c.count, c.submitted), func(t *testing.T) {
			gotScore, gotCount := next(c.score, c.count, c.submitted)
			if math.Abs(gotScore-c.wantScore) > 1e-9 || gotCount != c.wantCount {
				t.Fatalf("next = (%v, %d), want (%v, %d)", gotScore, gotCount, c.wantScore, c.wantCount)
			}
		})
	}
}
