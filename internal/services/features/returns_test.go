package features

import (
	"math"
	"testing"
)

func TestLogReturnsTooShort(t *testing.T) {
	if got := LogReturns(nil); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
	if got := LogReturns([]float64{100}); got != nil {
		t.Fatalf("expected nil for single price, got %v", got)
	}
}

func TestLogReturnsLength(t *testing.T) {
	prices := []float64{100, 101, 102, 103}
	got := LogReturns(prices)
	if len(got) != len(prices)-1 {
		t.Fatalf("expected %d returns, got %d", len(prices)-1, len(got))
	}
}

func TestLogReturnsValues(t *testing.T) {
	got := LogReturns([]float64{100, 110})
	want := 100 * math.Log(110.0/100.0)
	if math.Abs(got[0]-want) > 1e-12 {
		t.Fatalf("expected %v, got %v", want, got[0])
	}
}

func TestLogReturnsNonPositivePrice(t *testing.T) {
	got := LogReturns([]float64{100, 0, 50})
	if got[0] != 0 || got[1] != 0 {
		t.Fatalf("expected zero returns around non-positive price, got %v", got)
	}
}
