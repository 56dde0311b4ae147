package codec

import (
	"bytes"
	"errors"
	"testing"
)

func TestDecodeStandardBase64(t *testing.T) {
	raw, err := Decode("aGVsbG8=")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != "hello" {
		t.Fatalf("expected hello, got %q", raw)
	}
}

func TestDecodeIgnoresWhitespace(t *testing.T) {
	raw, err := Decode(" aGVs\r\nbG8=\t")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != "hello" {
		t.Fatalf("expected hello, got %q", raw)
	}
}

func TestDecodeRejectsInvalidInput(t *testing.T) {
	cases := map[string]string{
		"empty":        "",
		"whitespace":   "  \n\t",
		"bad alphabet": "not*base64!",
		"bad padding":  "aGVsbG8",
		"url alphabet": "-_-_",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(input); !errors.Is(err, ErrInvalidEncoding) {
				t.Fatalf("expected ErrInvalidEncoding, got %v", err)
			}
		})
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	a := Compute([]byte("same content"))
	b := Compute([]byte("same content"))
	c := Compute([]byte("other content"))

	if a != b {
		t.Fatal("expected identical content to produce identical fingerprints")
	}
	if a == c {
		t.Fatal("expected different content to produce different fingerprints")
	}
}

func TestComputeKnownDigest(t *testing.T) {
	const emptySHA256 = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Compute(nil).String(); got != emptySHA256 {
		t.Fatalf("expected %s, got %s", emptySHA256, got)
	}
}

func TestFingerprintBytesRoundTrip(t *testing.T) {
	f := Compute([]byte("abc"))
	back, err := FingerprintFromBytes(f.Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back != f {
		t.Fatal("expected fingerprint to survive persistence form")
	}

	if _, err := FingerprintFromBytes(bytes.Repeat([]byte{1}, 31)); err == nil {
		t.Fatal("expected short digest to be rejected")
	}
}

func TestEncodeMatchesDecode(t *testing.T) {
	raw := []byte{0, 1, 2, 250, 251, 252}
	back, err := Decode(Encode(raw))
	if err != nil || !bytes.Equal(back, raw) {
		t.Fatalf("expected %v, got %v (%v)", raw, back, err)
	}
}

func TestFingerprintFromHex(t *testing.T) {
	f := Compute([]byte("abc"))
	back, err := FingerprintFromHex(f.String())
	if err != nil || back != f {
		t.Fatalf("expected hex form to round trip, got %v", err)
	}
	if _, err := FingerprintFromHex("zz"); err == nil {
		t.Fatal("expected invalid hex to be rejected")
	}
}
