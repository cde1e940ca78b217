package auth

import (
	"errors"
	"testing"

	"github.com/cinescore/cinescore/internal/domain"
)

func TestAuthorize(t *testing.T) {
	cases := []struct {
		name    string
		role    domain.Role
		op      Operation
		allowed bool
	}{
		{"admin creates movie", domain.RoleAdmin, OpCreateMovie, true},
		{"client creates movie", domain.RoleClient, OpCreateMovie, false},
		{"admin submits score", domain.RoleAdmin, OpSubmitScore, true},
		{"client submits score", domain.RoleClient, OpSubmitScore, true},
		{"unknown role", domain.Role("SUPERUSER"), OpSubmitScore, false},
		{"unknown operation", domain.RoleAdmin, Operation("movies:delete"), false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := Authorize(domain.Principal{Subject: "x", Role: c.role}, c.op)
			if c.allowed && err != nil {
				t.Fatalf("Authorize = %v, want allow", err)
			}
			if !c.allowed && !errors.Is(err, ErrForbidden) {
				t.Fatalf("Authorize = %v, want ErrForbidden", err)
			}
		})
	}
}
