package oddsmath_test

import (
	"testing"

	"github.com/Apsteward8/market-scanner/pkg/oddsmath"
)

func TestIsValidOdds(t *testing.T) {
	tests := []struct {
		american int
		want     bool
	}{
		{100, true},
		{101, true},
		{-101, true},
		{120, true},
		{-138, true},
		{10000, true},
		{-10000, true},
		{-100, false}, // even money is canonically +100 on the grid
		{99, false},
		{-99, false},
		{0, false},
		{121, false},   // ladder steps by 2 above +120
		{-139, false},  // and by 2 below -120
		{15000, false}, // beyond grid bounds
	}

	for _, tt := range tests {
		if got := oddsmath.IsValidOdds(tt.american); got != tt.want {
			t.Errorf("IsValidOdds(%d) = %v, want %v", tt.american, got, tt.want)
		}
	}
}

func TestNextTickTowardLay(t *testing.T) {
	tests := []struct {
		name        string
		american    int
		steps       int
		want        int
		wantClamped bool
		shouldFail  bool
	}{
		{name: "One below +120", american: 120, steps: 1, want: 119},
		{name: "One below +101", american: 101, steps: 1, want: 100},
		{name: "Crossing even money", american: 100, steps: 1, want: -101},
		{name: "Two below +101 crosses boundary", american: 101, steps: 2, want: -101},
		{name: "One below -138", american: -138, steps: 1, want: -140},
		{name: "One below -100 region", american: -101, steps: 1, want: -102},
		{name: "Zero steps is identity", american: -110, steps: 0, want: -110},
		{name: "Clamped at grid end", american: -10000, steps: 1, want: -10000, wantClamped: true},
		{name: "Clamped from near end", american: -7500, steps: 5, want: -10000, wantClamped: true},
		{name: "Off-grid input", american: -100, steps: 1, shouldFail: true},
		{name: "Invalid input", american: 50, steps: 1, shouldFail: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, clamped, err := oddsmath.NextTickTowardLay(tt.american, tt.steps)

			if tt.shouldFail {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("NextTickTowardLay(%d, %d) = %d, want %d", tt.american, tt.steps, got, tt.want)
			}
			if clamped != tt.wantClamped {
				t.Errorf("clamped = %v, want %v", clamped, tt.wantClamped)
			}
			if !oddsmath.IsValidOdds(got) {
				t.Errorf("result %d is not a valid exchange price", got)
			}
		})
	}
}

func TestUndercut(t *testing.T) {
	tests := []struct {
		name        string
		american    int
		ticks       int
		want        int
		wantClamped bool
		shouldFail  bool
	}{
		{name: "Follow a +120 bet", american: 120, ticks: 1, want: 119},
		{name: "Follow a -138 bet", american: -138, ticks: 1, want: -140},
		{name: "Follow even money", american: 100, ticks: 1, want: -101},
		{name: "Aggressive two ticks", american: 120, ticks: 2, want: 118},
		{name: "Clamp at grid end", american: -10000, ticks: 3, want: -10000, wantClamped: true},
		{name: "Zero ticks rejected", american: 120, ticks: 0, shouldFail: true},
		{name: "Invalid odds rejected", american: 42, ticks: 1, shouldFail: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := oddsmath.Undercut(tt.american, tt.ticks)

			if tt.shouldFail {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Odds != tt.want {
				t.Errorf("Undercut(%d, %d) = %d, want %d", tt.american, tt.ticks, got.Odds, tt.want)
			}
			if got.Clamped != tt.wantClamped {
				t.Errorf("clamped = %v, want %v", got.Clamped, tt.wantClamped)
			}
			if !oddsmath.IsValidOdds(got.Odds) {
				t.Errorf("undercut %d is not a valid exchange price", got.Odds)
			}
		})
	}
}

// Undercutting must move the price exactly ticks positions toward the lay
// side whenever the grid has room, and be deterministic.
func TestUndercutTickDistance(t *testing.T) {
	for _, american := range []int{10000, 500, 150, 120, 101, 100, -101, -110, -200, -950} {
		for ticks := 1; ticks <= 3; ticks++ {
			first, err := oddsmath.Undercut(american, ticks)
			if err != nil {
				t.Fatalf("Undercut(%d, %d): %v", american, ticks, err)
			}

			second, _ := oddsmath.Undercut(american, ticks)
			if first != second {
				t.Errorf("Undercut(%d, %d) not deterministic: %+v vs %+v", american, ticks, first, second)
			}

			if first.Clamped {
				continue
			}
			dist, err := oddsmath.TickDistance(american, first.Odds)
			if err != nil {
				t.Fatalf("TickDistance(%d, %d): %v", american, first.Odds, err)
			}
			if dist != ticks {
				t.Errorf("Undercut(%d, %d) moved %d ticks", american, ticks, dist)
			}
		}
	}
}

func TestProfitMetrics(t *testing.T) {
	tests := []struct {
		name       string
		american   int
		stake      float64
		wantProfit float64
	}{
		{name: "Positive odds", american: 119, stake: 5.0, wantProfit: 5.95},
		{name: "Even money", american: 100, stake: 10.0, wantProfit: 10.0},
		{name: "Negative odds", american: -140, stake: 140.0, wantProfit: 100.0},
		{name: "Zero stake", american: 150, stake: 0, wantProfit: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := oddsmath.ProfitMetrics(tt.american, tt.stake)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := m.PotentialProfit - tt.wantProfit; diff > 0.001 || diff < -0.001 {
				t.Errorf("profit = %f, want %f", m.PotentialProfit, tt.wantProfit)
			}
			if want := tt.stake + tt.wantProfit; m.PotentialReturn != want {
				t.Errorf("return = %f, want %f", m.PotentialReturn, want)
			}
		})
	}
}
