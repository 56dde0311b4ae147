package migrations

import (
	"io/fs"
	"strings"
	"testing"
)

func readMigration(t *testing.T, name string) string {
	t.Helper()
	raw, err := fs.ReadFile(FS, name)
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return strings.Join(strings.Fields(string(raw)), " ")
}

func TestProfileImagesReferenceOwnerByIDAndType(t *testing.T) {
	customers := readMigration(t, "00001_create_customers.sql")
	if !strings.Contains(customers, "UNIQUE (id, type)") {
		t.Fatal("expected customers to expose (id, type) as a key")
	}

	images := readMigration(t, "00002_create_profile_images.sql")
	want := "FOREIGN KEY (owner_id, owner_type) REFERENCES customers (id, type) ON DELETE CASCADE"
	if !strings.Contains(images, want) {
		t.Fatalf("expected owner foreign key %q", want)
	}
}

func TestMigrationsAreGooseAnnotated(t *testing.T) {
	entries, err := fs.Glob(FS, "*.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected embedded migrations")
	}
	for _, name := range entries {
		body := readMigration(t, name)
		if !strings.Contains(body, "-- +goose Up") || !strings.Contains(body, "-- +goose Down") {
			t.Fatalf("expected %s to carry goose Up and Down sections", name)
		}
	}
}
