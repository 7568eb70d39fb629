package orders

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateOrderNumberFormat(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 8, 22, 15, 30, 0, 0, time.UTC)
	got := GenerateOrderNumber("FE", at, 0)

	if !strings.HasPrefix(got, "FE240822") {
		t.Fatalf("GenerateOrderNumber = %q, want prefix FE240822", got)
	}
	if len(got) != len("FE240822")+3 {
		t.Fatalf("GenerateOrderNumber = %q, want a 3-digit discriminator", got)
	}
	for _, r := range got[len("FE"):] {
		if r < '0' || r > '9' {
			t.Fatalf("GenerateOrderNumber = %q, non-digit after prefix", got)
		}
	}
}

func TestGenerateOrderNumberUsesUTCDate(t *testing.T) {
	t.Parallel()

	// 23:30 UTC-5 is already the next day in UTC.
	loc := time.FixedZone("UTC-5", -5*3600)
	at := time.Date(2024, 12, 31, 23, 30, 0, 0, loc)
	got := GenerateOrderNumber("FE", at, 0)

	if !strings.HasPrefix(got, "FE250101") {
		t.Fatalf("GenerateOrderNumber = %q, want UTC date prefix FE250101", got)
	}
}

func TestGenerateOrderNumberWidensOnRetry(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 8, 22, 0, 0, 0, 0, time.UTC)
	base := len("FE240822")

	tests := []struct {
		attempt   int
		wantWidth int
	}{
		{0, 3},
		{1, 4},
		{3, 6},
		{6, 9},
		{7, 9},  // capped
		{20, 9}, // still capped
	}
	for _, tt := range tests {
		got := GenerateOrderNumber("FE", at, tt.attempt)
		if len(got) != base+tt.wantWidth {
			t.Errorf("attempt %d: %q has %d discriminator digits, want %d",
				tt.attempt, got, len(got)-base, tt.wantWidth)
		}
	}
}
