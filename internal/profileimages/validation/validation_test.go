package validation

import (
	"strings"
	"testing"

	"mediavault_backend/internal/profileimages/codec"
	"mediavault_backend/internal/profileimages/domain"
)

func defaultRules() *Rules {
	return New(Options{
		MaxPerProfile:    3,
		MaxImageBytes:    16,
		AllowedMimeTypes: []string{"image/jpeg", "image/png"},
	})
}

func item(raw string, contentType string) domain.UploadItem {
	return domain.UploadItem{Payload: codec.Encode([]byte(raw)), ContentType: contentType}
}

func named(it domain.UploadItem, name string) domain.UploadItem {
	it.FileName = &name
	return it
}

func TestValidateItemRuleOrder(t *testing.T) {
	rules := defaultRules()
	longName := strings.Repeat("a", domain.MaxFileNameLength+1)

	cases := []struct {
		name string
		item domain.UploadItem
		code string
	}{
		{"missing payload", domain.UploadItem{Payload: "   ", ContentType: ""}, domain.CodePayloadRequired},
		{"invalid payload", domain.UploadItem{Payload: "%%%", ContentType: ""}, domain.CodeInvalidEncoding},
		{"too large before type check", item(strings.Repeat("x", 17), ""), domain.CodeImageTooLarge},
		{"missing type", item("ok", " "), domain.CodeContentTypeRequired},
		{"unsupported type", named(item("ok", "image/gif"), longName), domain.CodeUnsupportedContentType},
		{"long file name", named(item("ok", "image/png"), longName), domain.CodeFileNameTooLong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := rules.ValidateItem(tc.item)
			if err == nil {
				t.Fatalf("expected %s, got nil", tc.code)
			}
			if err.Code != tc.code {
				t.Fatalf("expected %s, got %s", tc.code, err.Code)
			}
		})
	}
}

func TestValidateItemAcceptsValidItem(t *testing.T) {
	rules := defaultRules()
	if err := rules.ValidateItem(named(item("exactly sixteen!", "IMAGE/PNG"), "cat.png")); err != nil {
		t.Fatalf("expected valid item, got %v", err)
	}
}

func TestImageTooLargeCarriesFileName(t *testing.T) {
	rules := defaultRules()
	err := rules.ValidateItem(named(item(strings.Repeat("x", 17), "image/png"), "big.png"))
	if err == nil || err.Code != domain.CodeImageTooLarge {
		t.Fatalf("expected too large, got %v", err)
	}
	if !strings.Contains(err.Message, "'big.png'") || !strings.Contains(err.Message, "16 bytes") {
		t.Fatalf("unexpected message %q", err.Message)
	}
}

func TestFileNameLengthCountsUTF16Units(t *testing.T) {
	rules := defaultRules()

	// Each emoji is two UTF-16 code units.
	fits := strings.Repeat("\U0001F600", 127) + "a"
	if err := rules.ValidateItem(named(item("ok", "image/png"), fits)); err != nil {
		t.Fatalf("expected 255 code units to pass, got %v", err)
	}

	tooLong := strings.Repeat("\U0001F600", 128)
	err := rules.ValidateItem(named(item("ok", "image/png"), tooLong))
	if err == nil || err.Code != domain.CodeFileNameTooLong {
		t.Fatalf("expected filename too long, got %v", err)
	}

	accented := strings.Repeat("é", domain.MaxFileNameLength)
	if err := rules.ValidateItem(named(item("ok", "image/png"), accented)); err != nil {
		t.Fatalf("expected 255 BMP characters to pass, got %v", err)
	}
}

func TestValidateBatchEmpty(t *testing.T) {
	err := defaultRules().ValidateBatch(nil)
	if err == nil || err.Code != domain.CodeNoImagesProvided {
		t.Fatalf("expected none provided, got %v", err)
	}
}

func TestValidateBatchSizeCheckedBeforeItems(t *testing.T) {
	bad := domain.UploadItem{Payload: ""}
	err := defaultRules().ValidateBatch([]domain.UploadItem{bad, bad, bad, bad})
	if err == nil || err.Code != domain.CodeCapacityExceeded {
		t.Fatalf("expected capacity exceeded, got %v", err)
	}
}

func TestValidateBatchSizeIgnoredWhenLimitNotPositive(t *testing.T) {
	rules := New(Options{MaxPerProfile: 0, MaxImageBytes: 16, AllowedMimeTypes: []string{"image/png"}})
	items := []domain.UploadItem{item("a", "image/png"), item("b", "image/png"), item("c", "image/png"), item("d", "image/png")}
	if err := rules.ValidateBatch(items); err != nil {
		t.Fatalf("expected batch rule to be skipped, got %v", err)
	}
}

func TestValidateBatchReturnsFirstItemFailure(t *testing.T) {
	items := []domain.UploadItem{
		item("ok", "image/png"),
		item("ok", "image/gif"),
		{Payload: ""},
	}
	err := defaultRules().ValidateBatch(items)
	if err == nil || err.Code != domain.CodeUnsupportedContentType {
		t.Fatalf("expected first failure to win, got %v", err)
	}
}

func TestNewCopiesAllowedTypes(t *testing.T) {
	allowed := []string{"image/png"}
	rules := New(Options{MaxImageBytes: 16, AllowedMimeTypes: allowed})
	allowed[0] = "image/gif"

	if err := rules.ValidateItem(item("ok", "image/png")); err != nil {
		t.Fatalf("expected rules to keep their own copy, got %v", err)
	}
}
