package cmd

import (
	"testing"
	"time"
)

func TestFormatCredExpiry(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 5, 0, 0, time.UTC)

	if got := formatCredExpiry(300, at); got != "2025-06-01T12:05:00Z" {
		t.Errorf("formatCredExpiry(300, ...) = %q", got)
	}
	if got := formatCredExpiry(0, at); got != "never" {
		t.Errorf("formatCredExpiry(0, ...) = %q, want never", got)
	}
}
