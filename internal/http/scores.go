package httpserver

import (
	"errors"
	"net/http"

	"github.com/cinescore/cinescore/internal/auth"
	"github.com/cinescore/cinescore/internal/repository"
	"github.com/cinescore/cinescore/internal/validation"
)

// scoreRequest uses pointers so absent and null fields are distinguishable
// from zero values during validation.
type scoreRequest struct {
	MovieID *int64   `json:"movieId"`
	Score   *float64 `json:"score"`
}

// handleSubmitScore runs the mutation pipeline for PUT /scores: resolve
// principal, authorize, validate, then aggregate. Each stage terminates the
// request on failure, so an unauthorized or malformed request never probes
// whether the movie exists.
func (s *Server) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	principal, err := s.verifier.Resolve(r.Header.Get("Authorization"))
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}
	if err := auth.Authorize(principal, auth.OpSubmitScore); err != nil {
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
		return
	}

	var req scoreRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := validation.ScoreSubmission(req.MovieID, req.Score, s.cfg.ScoreMaxValue); err != nil {
		s.respondValidationError(w, err)
		return
	}

	movie, err := s.aggregator.Apply(r.Context(), *req.MovieID, *req.Score)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		// Includes scores.ErrConflict: retry exhaustion is an internal
		// concurrency detail, not a client-visible error kind.
		s.logger.Printf("score submission by %s: %v", principal.Subject, err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process score")
		return
	}
	s.cache.InvalidateMovie(r.Context(), movie.ID)

	s.respondJSON(w, http.StatusOK, toMovieResponse(movie))
}
