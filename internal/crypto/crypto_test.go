package crypto

import (
	"errors"
	"strings"
	"testing"
)

func TestNewFieldSealer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{name: "missing key", key: "", wantErr: ErrMissingKey},
		{name: "invalid key length", key: "short", wantErr: ErrInvalidKey},
		{name: "valid key", key: strings.Repeat("k", 32)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sealer, err := NewFieldSealer(tt.key)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil || sealer == nil {
				t.Fatalf("expected sealer, got %v", err)
			}
		})
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	t.Parallel()

	sealer, err := NewFieldSealer(strings.Repeat("k", 32))
	if err != nil {
		t.Fatalf("failed to build sealer: %v", err)
	}

	first, err := sealer.Seal("Jane Doe", "page-1")
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	second, err := sealer.Seal("Jane Doe", "page-1")
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct ciphertexts for the same plaintext")
	}
	if !IsSealed(first) || strings.Contains(first, "Jane") {
		t.Fatalf("expected sealed value, got %q", first)
	}

	got, err := sealer.Open(first, "page-1")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if got != "Jane Doe" {
		t.Fatalf("expected Jane Doe, got %q", got)
	}
}

func TestOpenRejectsOtherRecord(t *testing.T) {
	t.Parallel()

	sealer, err := NewFieldSealer(strings.Repeat("k", 32))
	if err != nil {
		t.Fatalf("failed to build sealer: %v", err)
	}

	sealed, err := sealer.Seal("Jane Doe", "page-1")
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	if _, err := sealer.Open(sealed, "page-2"); err == nil {
		t.Fatal("expected error when opening with another record id")
	}
}

func TestOpenPassesThroughPlainValues(t *testing.T) {
	t.Parallel()

	sealer, err := NewFieldSealer(strings.Repeat("k", 32))
	if err != nil {
		t.Fatalf("failed to build sealer: %v", err)
	}

	got, err := sealer.Open("Jane Doe", "page-1")
	if err != nil || got != "Jane Doe" {
		t.Fatalf("Open(plain) = %q, %v", got, err)
	}

	empty, err := sealer.Seal("", "page-1")
	if err != nil || empty != "" {
		t.Fatalf("Seal(empty) = %q, %v", empty, err)
	}
}

func TestOpenRejectsCorruptValues(t *testing.T) {
	t.Parallel()

	sealer, err := NewFieldSealer(strings.Repeat("k", 32))
	if err != nil {
		t.Fatalf("failed to build sealer: %v", err)
	}

	tests := []struct {
		name    string
		value   string
		wantErr error
	}{
		{name: "bad base64", value: sealedPrefix + "%%%"},
		{name: "too short", value: sealedPrefix + "AAAA", wantErr: ErrCiphertextTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := sealer.Open(tt.value, "page-1")
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNewSealer(t *testing.T) {
	t.Parallel()

	plain, err := NewSealer("")
	if err != nil {
		t.Fatalf("NewSealer(empty) error = %v", err)
	}
	if _, ok := plain.(PlainSealer); !ok {
		t.Fatalf("expected PlainSealer, got %T", plain)
	}

	keyed, err := NewSealer(strings.Repeat("k", 32))
	if err != nil {
		t.Fatalf("NewSealer(key) error = %v", err)
	}
	sealed, err := keyed.Seal("Jane", "page-1")
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}

	if _, err := plain.Open(sealed, "page-1"); !errors.Is(err, ErrMissingKey) {
		t.Fatalf("expected ErrMissingKey opening sealed value without key, got %v", err)
	}
}
