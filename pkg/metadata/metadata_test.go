package metadata

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSignAndVerify(t *testing.T) {
	generated := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	signed := Sign("# Catalog\n\nbody\n", 42, generated)

	ok, err := Verify(signed)
	if !ok || err != nil {
		t.Fatalf("Verify() = %v, %v", ok, err)
	}

	meta, clean := Extract(signed)
	if clean != "# Catalog\n\nbody" {
		t.Errorf("Extract() clean = %q", clean)
	}

	if meta.Datasets != 42 || !meta.GeneratedAt.Equal(generated) || meta.Version != Version {
		t.Errorf("Extract() meta = %+v", meta)
	}
}

func TestSign_ReplacesExistingBlock(t *testing.T) {
	first := Sign("content", 1, time.Now())
	second := Sign(first, 2, time.Now())

	if n := strings.Count(second, TagStart); n != 1 {
		t.Errorf("Signed document has %d metadata blocks, want 1", n)
	}

	if meta, _ := Extract(second); meta.Datasets != 2 {
		t.Errorf("Datasets = %d, want 2", meta.Datasets)
	}
}

func TestVerify_Errors(t *testing.T) {
	if _, err := Verify("no block here"); !errors.Is(err, ErrNoMetadataBlock) {
		t.Errorf("Verify() error = %v, want ErrNoMetadataBlock", err)
	}

	noHash := "text\n\n" + TagStart + "\nDATASETS: 1\n" + TagEnd
	if _, err := Verify(noHash); !errors.Is(err, ErrNoHashFound) {
		t.Errorf("Verify() error = %v, want ErrNoHashFound", err)
	}

	tampered := strings.Replace(Sign("original text", 1, time.Now()), "original", "edited", 1)
	if _, err := Verify(tampered); !errors.Is(err, ErrHashMismatch) {
		t.Errorf("Verify() error = %v, want ErrHashMismatch", err)
	}
}
