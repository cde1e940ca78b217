package auth

import (
	"errors"

	"github.com/cinescore/cinescore/internal/domain"
)

// ErrForbidden indicates a resolved principal whose role is not allowed to
// perform the requested operation.
var ErrForbidden = errors.New("auth: operation forbidden for role")

// Operation names a mutating action guarded by the permission table.
// Read operations require no credential and never pass through the gate.
type Operation string

const (
	OpCreateMovie Operation = "movies:create"
	OpSubmitScore Operation = "scores:submit"
)

// permissions is the static operation → allowed-roles table.
var permissions = map[Operation]map[domain.Role]struct{}{
	OpCreateMovie: {
		domain.RoleAdmin: {},
	},
	OpSubmitScore: {
		domain.RoleAdmin:  {},
		domain.RoleClient: {},
	},
}

// Authorize decides whether the principal may perform op. It is a pure
// function over (principal, operation); callers must have resolved the
// principal first, so identity failures surface as 401 before this runs.
func Authorize(p domain.Principal, op Operation) error {
	allowed, ok := permissions[op]
	if !ok {
		return ErrForbidden
	}
	if _, ok := allowed[p.Role]; !ok {
		return ErrForbidden
	}
	return nil
}
