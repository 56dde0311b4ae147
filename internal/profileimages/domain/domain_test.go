package domain

import (
	"net/http"
	"testing"

	"mediavault_backend/platform/apperr"
)

func TestParseOwnerType(t *testing.T) {
	cases := map[string]OwnerType{
		"customer":  OwnerCustomer,
		"Customers": OwnerCustomer,
		"LEAD":      OwnerLead,
		"leads":     OwnerLead,
	}
	for input, want := range cases {
		got, ok := ParseOwnerType(input)
		if !ok || got != want {
			t.Fatalf("%q: expected %v, got %v (ok=%v)", input, want, got, ok)
		}
	}

	for _, input := range []string{"", "client", "leadz"} {
		if _, ok := ParseOwnerType(input); ok {
			t.Fatalf("expected %q to be rejected", input)
		}
	}
}

func TestOwnerTypePersistedValues(t *testing.T) {
	if OwnerLead != 0 || OwnerCustomer != 1 {
		t.Fatalf("expected lead=0 customer=1, got lead=%d customer=%d", OwnerLead, OwnerCustomer)
	}
	if OwnerType(7).Valid() {
		t.Fatal("expected unknown owner type to be invalid")
	}
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    *apperr.Error
		code   string
		status int
	}{
		{ProfileNotFound(), CodeProfileNotFound, http.StatusNotFound},
		{ImageNotFound(4), CodeImageNotFound, http.StatusNotFound},
		{CapacityExceeded(10), CodeCapacityExceeded, http.StatusConflict},
		{DuplicateImage("a.png"), CodeDuplicateImage, http.StatusConflict},
		{NoImagesProvided(), CodeNoImagesProvided, http.StatusBadRequest},
		{ImageTooLarge("", 5), CodeImageTooLarge, http.StatusBadRequest},
		{PayloadRequired(), CodePayloadRequired, http.StatusBadRequest},
		{InvalidEncoding(), CodeInvalidEncoding, http.StatusBadRequest},
		{ContentTypeRequired(), CodeContentTypeRequired, http.StatusBadRequest},
		{UnsupportedContentType("image/gif", []string{"image/png"}), CodeUnsupportedContentType, http.StatusBadRequest},
		{FileNameTooLong(MaxFileNameLength), CodeFileNameTooLong, http.StatusBadRequest},
		{PersistenceFailure("op", nil), CodePersistenceFailure, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if tc.err.Code != tc.code {
			t.Fatalf("expected code %s, got %s", tc.code, tc.err.Code)
		}
		if tc.err.HTTPStatus() != tc.status {
			t.Fatalf("%s: expected status %d, got %d", tc.code, tc.status, tc.err.HTTPStatus())
		}
	}
}

func TestMessagesIncludeFileNameWhenKnown(t *testing.T) {
	if got := DuplicateImage("cat.png").Message; got != "An identical image for 'cat.png' already exists for this profile." {
		t.Fatalf("unexpected message %q", got)
	}
	if got := DuplicateImage("").Message; got != "An identical image already exists for this profile." {
		t.Fatalf("unexpected message %q", got)
	}
	if got := ImageTooLarge("big.jpg", 100).Message; got != "Image 'big.jpg' exceeds the maximum allowed size of 100 bytes." {
		t.Fatalf("unexpected message %q", got)
	}
	if got := ImageTooLarge("", 100).Message; got != "An image exceeds the maximum allowed size of 100 bytes." {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestUnsupportedContentTypeMessage(t *testing.T) {
	allowed := []string{"image/jpeg", "image/png"}
	if got := UnsupportedContentType("image/gif", allowed).Message; got != "MimeType 'image/gif' is not supported. Allowed types: image/jpeg, image/png." {
		t.Fatalf("unexpected message %q", got)
	}
	if got := UnsupportedContentType(" ", allowed).Message; got != "MimeType is not supported. Allowed types: image/jpeg, image/png." {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestCapacityExceededCarriesLimit(t *testing.T) {
	err := CapacityExceeded(0)
	details, ok := err.Details.(map[string]any)
	if !ok || details["limit"] != 0 {
		t.Fatalf("expected limit detail 0, got %#v", err.Details)
	}
	if err.Message != "A profile can store at most 0 images. Remove an image before uploading more." {
		t.Fatalf("unexpected message %q", err.Message)
	}
}
