package middleware

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestValidateMediaType(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"png", true},
		{"image/png", true},
		{"JPEG", true},
		{"image/webp", true},
		{"gif", true},
		{"tiff", false},
		{"image/svg+xml", false},
		{"", false},
		{"  ", false},
	}
	for _, c := range cases {
		err := ValidateMediaType(c.in)
		if c.ok && err != nil {
			t.Errorf("ValidateMediaType(%q) = %v, want nil", c.in, err)
		}
		if !c.ok && err == nil {
			t.Errorf("ValidateMediaType(%q) = nil, want error", c.in)
		}
	}
}

func TestDecodeImage(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G'}
	b64 := base64.StdEncoding.EncodeToString(payload)

	got, err := DecodeImage(b64)
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("decoded %q, want %q", got, payload)
	}

	// A full data URI is tolerated.
	got, err = DecodeImage("data:image/png;base64," + b64)
	if err != nil {
		t.Fatalf("DecodeImage data URI: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("decoded %q, want %q", got, payload)
	}

	if _, err := DecodeImage(""); err == nil {
		t.Error("empty payload accepted")
	}
	if _, err := DecodeImage("not base64!!!"); err == nil {
		t.Error("invalid base64 accepted")
	}
	if _, err := DecodeImage(strings.Repeat("A", MaxImageBytes*2)); err == nil {
		t.Error("oversized payload accepted")
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  file:///a/b.png\x00\x01  "); got != "file:///a/b.png" {
		t.Errorf("SanitizeString = %q", got)
	}
	if got := SanitizeString("line1\nline2"); got != "line1\nline2" {
		t.Errorf("newlines should survive, got %q", got)
	}
}
