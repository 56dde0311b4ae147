package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusByKind(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindNotFound, http.StatusNotFound},
		{KindValidation, http.StatusBadRequest},
		{KindBadRequest, http.StatusBadRequest},
		{KindConflict, http.StatusConflict},
		{KindForbidden, http.StatusForbidden},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindInternal, http.StatusInternalServerError},
		{KindUnknown, http.StatusBadRequest},
	}

	for _, tc := range cases {
		if got := New(tc.kind, "x").HTTPStatus(); got != tc.want {
			t.Fatalf("kind %d: expected status %d, got %d", tc.kind, tc.want, got)
		}
	}
}

func TestErrorMessageIncludesOp(t *testing.T) {
	err := Conflict("already exists").WithOp("images.upload")
	if err.Error() != "images.upload: already exists" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestKindAndCodeSurviveWrapping(t *testing.T) {
	base := NotFound("missing").WithCode("profile.not_found")
	wrapped := fmt.Errorf("list: %w", base)

	if !Is(wrapped, KindNotFound) {
		t.Fatal("expected wrapped error to keep its kind")
	}
	if e, ok := As(wrapped); !ok || e.Code != "profile.not_found" {
		t.Fatalf("expected code to survive wrapping, got %v", wrapped)
	}
	if GetKind(errors.New("plain")) != KindUnknown {
		t.Fatal("expected plain errors to have unknown kind")
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindInternal, "commit failed", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to reach the cause")
	}
}
