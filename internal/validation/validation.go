package validation

import (
	"fmt"
	"strings"
)

// FieldError ties one validation failure to one payload attribute.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Invalid carries every field error found in a payload. Checks accumulate
// rather than fail fast so the caller sees all problems at once.
type Invalid struct {
	Errors []FieldError
}

func (e *Invalid) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func result(errs []FieldError) error {
	if len(errs) == 0 {
		return nil
	}
	return &Invalid{Errors: errs}
}

// ScoreSubmission checks a score payload against storage-independent rules.
// movieID and score are pointers so absent/null JSON fields are distinguishable
// from zero values. maxScore is the configured upper bound for submissions.
func ScoreSubmission(movieID *int64, score *float64, maxScore float64) error {
	var errs []FieldError

	if movieID == nil {
		errs = append(errs, FieldError{Field: "movieId", Message: "movieId required"})
	}
	if score == nil || *score < 0 {
		errs = append(errs, FieldError{Field: "score", Message: "score must be ≥ 0"})
	} else if *score > maxScore {
		errs = append(errs, FieldError{Field: "score", Message: fmt.Sprintf("score must be ≤ %g", maxScore)})
	}

	return result(errs)
}

// MovieCreate checks a movie-creation payload.
func MovieCreate(title string) error {
	var errs []FieldError

	if strings.TrimSpace(title) == "" {
		errs = append(errs, FieldError{Field: "title", Message: "title required"})
	}

	return result(errs)
}

// Credentials checks a token-request payload.
func Credentials(username, password string) error {
	var errs []FieldError

	if strings.TrimSpace(username) == "" {
		errs = append(errs, FieldError{Field: "username", Message: "username required"})
	}
	if password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password required"})
	}

	return result(errs)
}
