package ffi

import (
	"strings"
	"testing"
	"unicode/utf8"

	stderr "errors"

	"github.com/postalkit/postalkit/pkg/errors"
)

func TestCheckNulBytes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain address", "123 Main St", false},
		{"empty string", "", false},
		{"unicode", "Straße 12, München", false},
		{"leading nul", "\x00abc", true},
		{"embedded nul", "123 Main\x00St", true},
		{"trailing nul", "abc\x00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkNulBytes("address", tt.input)
			if tt.wantErr {
				var pe *errors.PostalError
				if !stderr.As(err, &pe) || pe.Code != errors.ErrCodeBoundaryNulByte {
					t.Errorf("error = %v, want %s", err, errors.ErrCodeBoundaryNulByte)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLossy(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"valid ascii", "main street", "main street"},
		{"valid unicode", "rue de l'été", "rue de l'été"},
		{"invalid byte", "main\xffstreet", "main�street"},
		{"truncated sequence", "caf\xc3", "caf�"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lossy(tt.input); got != tt.want {
				t.Errorf("lossy(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTruncateMessage(t *testing.T) {
	short := "setup failed"
	if got := truncateMessage(short); got != short {
		t.Errorf("short message was altered: %q", got)
	}

	long := strings.Repeat("x", maxErrorMessage+100)
	got := truncateMessage(long)
	if len(got) != maxErrorMessage {
		t.Errorf("truncated length = %d, want %d", len(got), maxErrorMessage)
	}

	// Truncation must not split a multi-byte sequence.
	multibyte := strings.Repeat("é", maxErrorMessage)
	got = truncateMessage(multibyte)
	if len(got) > maxErrorMessage {
		t.Errorf("truncated length = %d, want <= %d", len(got), maxErrorMessage)
	}
	if !utf8.ValidString(got) {
		t.Error("truncation produced invalid UTF-8")
	}
}
