package money

import (
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"4.30", 4.3, false},
		{" 10 ", 10, false},
		{"-2.5", -2.5, false},
		{"0", 0, false},
		{"", 0, true},
		{"abc", 0, true},
		{"1.2.3", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				if err != ErrInvalidAmount {
					t.Fatalf("expected ErrInvalidAmount, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseAmount(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRoundUp(t *testing.T) {
	tests := []struct {
		amount        float64
		wantCharge    float64
		wantIncrement float64
	}{
		{4.30, 5, 0.70},
		{9.99, 10, 0.01},
		{3, 3, 0},
		{0.01, 1, 0.99},
	}
	for _, tt := range tests {
		charge, increment := RoundUp(tt.amount)
		if charge != tt.wantCharge || increment != tt.wantIncrement {
			t.Fatalf("RoundUp(%v) = %v, %v; want %v, %v", tt.amount, charge, increment, tt.wantCharge, tt.wantIncrement)
		}
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(0.7000000000000002); got != 0.7 {
		t.Fatalf("expected 0.7, got %v", got)
	}
	if got := Round2(2.345); got != 2.35 {
		t.Fatalf("expected 2.35, got %v", got)
	}
	if got := Round2(math.Inf(1)); !math.IsInf(got, 1) {
		t.Fatalf("expected +Inf passthrough, got %v", got)
	}
}

func TestIsPositive(t *testing.T) {
	if IsPositive(0) || IsPositive(-1) || IsPositive(math.NaN()) || IsPositive(math.Inf(1)) {
		t.Fatal("expected non-positive values to be rejected")
	}
	if !IsPositive(0.01) {
		t.Fatal("expected 0.01 to be positive")
	}
}

func TestFormat(t *testing.T) {
	if got := Format(95); got != "95.00" {
		t.Fatalf("expected 95.00, got %s", got)
	}
	if got := Format(3.25); got != "3.25" {
		t.Fatalf("expected 3.25, got %s", got)
	}
}
