package validation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type signUpPayload struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,pwd"`
	Code     string `json:"code" binding:"omitempty,len=6,numeric"`
}

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	Init()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		t.Fatal("gin binding validator engine unavailable")
	}
	return v
}

func TestToDetailsFieldMessages(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name    string
		payload signUpPayload
		field   string
		want    string
	}{
		{
			name:    "missing email",
			payload: signUpPayload{Username: "alice", Password: "longenough"},
			field:   "email",
			want:    "is required",
		},
		{
			name:    "malformed email",
			payload: signUpPayload{Email: "not-an-email", Username: "alice", Password: "longenough"},
			field:   "email",
			want:    "must be a valid email",
		},
		{
			name:    "short username",
			payload: signUpPayload{Email: "a@b.com", Username: "ab", Password: "longenough"},
			field:   "username",
			want:    "must be at least 3 characters long",
		},
		{
			name:    "short password via pwd alias",
			payload: signUpPayload{Email: "a@b.com", Username: "alice", Password: "short"},
			field:   "password",
			want:    "min length 8",
		},
		{
			name:    "wrong code length",
			payload: signUpPayload{Email: "a@b.com", Username: "alice", Password: "longenough", Code: "12345"},
			field:   "code",
			want:    "must be exactly 6 characters long",
		},
		{
			name:    "non-numeric code",
			payload: signUpPayload{Email: "a@b.com", Username: "alice", Password: "longenough", Code: "12345x"},
			field:   "code",
			want:    "must be numeric",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.payload)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			details := ToDetails(err)
			if got := details[tt.field]; got != tt.want {
				t.Fatalf("details[%q] = %q, want %q (all: %v)", tt.field, got, tt.want, details)
			}
		})
	}
}

func TestToDetailsJSONAndFallback(t *testing.T) {
	var dst signUpPayload
	jsonErr := json.Unmarshal([]byte("{broken"), &dst)
	if jsonErr == nil {
		t.Fatal("expected a json syntax error")
	}
	if got := ToDetails(jsonErr)["payload"]; got != "invalid json" {
		t.Fatalf("json error detail = %q, want %q", got, "invalid json")
	}

	if got := ToDetails(errors.New("boom"))["payload"]; got != "invalid payload" {
		t.Fatalf("fallback detail = %q, want %q", got, "invalid payload")
	}

	if ToDetails(nil) != nil {
		t.Fatal("nil error should yield nil details")
	}
}

func TestToDetailsUnknownTagFallback(t *testing.T) {
	v := newValidator(t)

	payload := struct {
		Site string `json:"site" binding:"required,url"`
	}{Site: "not a url"}

	err := v.Struct(payload)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if got := ToDetails(err)["site"]; got != "validation failed for 'url'" {
		t.Fatalf("unknown tag detail = %q, want %q", got, "validation failed for 'url'")
	}
}
