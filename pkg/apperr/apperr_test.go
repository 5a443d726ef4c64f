package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NotFound("user not found"), http.StatusNotFound},
		{"bad request", BadRequest("wrong password"), http.StatusBadRequest},
		{"conflict", Conflict("email taken"), http.StatusConflict},
		{"authentication", Unauthenticated("admin privileges required"), http.StatusUnauthorized},
		{"authorization", Forbidden("account inactive"), http.StatusForbidden},
		{"internal", Internal("config missing", errors.New("boom")), http.StatusInternalServerError},
		{"plain error", errors.New("something"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("context: %w", Conflict("duplicate role")), http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Status(tt.err); got != tt.want {
				t.Errorf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("signup: %w", Conflict("email taken"))
	if !errors.Is(err, Conflict("")) {
		t.Error("errors.Is should match Conflict kind through wrapping")
	}
	if errors.Is(err, NotFound("")) {
		t.Error("errors.Is must not match a different kind")
	}
}

func TestUnwrap(t *testing.T) {
	inner := errors.New("pg down")
	err := Internal("save failed", inner)
	if !errors.Is(err, inner) {
		t.Error("wrapped cause should be reachable via errors.Is")
	}
}
