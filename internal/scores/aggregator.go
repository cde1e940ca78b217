package scores

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/cinescore/cinescore/internal/domain"
)

// maxAttempts bounds the optimistic retry loop. Contention on one movie is
// short-lived (the swap itself is a single UPDATE), so a handful of attempts
// is enough; exhaustion means pathological contention and surfaces as an
// error rather than a silent drop or a double-apply.
const maxAttempts = 5

// ErrConflict reports that the optimistic update kept losing to concurrent
// writers for the same movie and gave up.
var ErrConflict = errors.New("scores: aggregate update conflict")

// Store is the slice of persistence the aggregator needs: a snapshot read
// and a compare-and-swap keyed on the movie's current submission count.
// Implementations must return an unchanged=false swap result, not an error,
// when the expectation is stale.
type Store interface {
	GetByID(ctx context.Context, id int64) (domain.Movie, error)
	CompareAndSwapScore(ctx context.Context, id, expectedCount int64, score float64, count int64) (domain.Movie, bool, error)
}

// Aggregator folds score submissions into each movie's running mean.
type Aggregator struct {
	store  Store
	logger *log.Logger
}

// New constructs an Aggregator.
func New(store Store, logger *log.Logger) *Aggregator {
	if logger == nil {
		logger = log.Default()
	}
	return &Aggregator{store: store, logger: logger}
}

// Apply records one submission for the movie and returns the updated entity.
// The caller has already authorized the principal and validated the score;
// the only failure modes left are an unknown movie and retry exhaustion.
//
// Each attempt reads the current (score, count) pair, computes the streaming
// mean and swaps it in, keyed on the count it read. A lost race re-reads and
// recomputes, so every accepted submission lands exactly once no matter how
// concurrent submissions interleave.
func (a *Aggregator) Apply(ctx context.Context, movieID int64, score float64) (domain.Movie, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		movie, err := a.store.GetByID(ctx, movieID)
		if err != nil {
			return domain.Movie{}, err
		}

		newScore, newCount := next(movie.Score, movie.Count, score)
		updated, swapped, err := a.store.CompareAndSwapScore(ctx, movieID, movie.Count, newScore, newCount)
		if err != nil {
			return domain.Movie{}, err
		}
		if swapped {
			return updated, nil
		}
		a.logger.Printf("scores: movie %d aggregate moved underneath us (attempt %d/%d)", movieID, attempt, maxAttempts)
	}
	return domain.Movie{}, fmt.Errorf("movie %d: %w", movieID, ErrConflict)
}

// next computes the streaming-mean transition. It needs only the current
// aggregate, never the submission history.
func next(score float64, count int64, submitted float64) (float64, int64) {
	newCount := count + 1
	newScore := (score*float64(count) + submitted) / float64(newCount)
	return newScore, newCount
}
