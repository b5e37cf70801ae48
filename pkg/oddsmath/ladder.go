package oddsmath

import "fmt"

// tickLadder is the exchange's supported price grid, ordered from the price
// most attractive to a bettor (+10000) to the least attractive (-10000).
// There is no -100 entry: -100 and +100 are the same even-money price and the
// grid canonicalizes it as +100, so stepping below +100 lands on -101.
var tickLadder = []int{
	10000, 7500, 5000, 4500, 4000, 3500, 3000, 2750, 2500, 2250,
	2000, 1900, 1800, 1700, 1600, 1500, 1400, 1300, 1200, 1100,
	1000, 980, 960, 940, 920, 900, 880, 860, 840, 820,
	800, 780, 760, 740, 720, 700, 680, 660, 640, 620,
	600, 580, 560, 540, 520, 500, 490, 480, 470, 460,
	450, 440, 430, 420, 410, 400, 390, 380, 370, 360,
	350, 340, 330, 320, 310, 300, 295, 290, 285, 280,
	275, 270, 265, 260, 255, 250, 245, 240, 235, 230,
	225, 220, 215, 210, 205, 200, 198, 196, 194, 192,
	190, 188, 186, 184, 182, 180, 178, 176, 174, 172,
	170, 168, 166, 164, 162, 160, 158, 156, 154, 152,
	150, 148, 146, 144, 142, 140, 138, 136, 134, 132,
	130, 128, 126, 124, 122, 120, 119, 118, 117, 116,
	115, 114, 113, 112, 111, 110, 109, 108, 107, 106,
	105, 104, 103, 102, 101, 100, -101, -102, -103, -104,
	-105, -106, -107, -108, -109, -110, -111, -112, -113, -114,
	-115, -116, -117, -118, -119, -120, -122, -124, -126, -128,
	-130, -132, -134, -136, -138, -140, -142, -144, -146, -148,
	-150, -152, -154, -156, -158, -160, -162, -164, -166, -168,
	-170, -172, -174, -176, -178, -180, -182, -184, -186, -188,
	-190, -192, -194, -196, -198, -200, -205, -210, -215, -220,
	-225, -230, -235, -240, -245, -250, -255, -260, -265, -270,
	-275, -280, -285, -290, -295, -300, -310, -320, -330, -340,
	-350, -360, -370, -380, -390, -400, -410, -420, -430, -440,
	-450, -460, -470, -480, -490, -500, -520, -540, -560, -580,
	-600, -620, -640, -660, -680, -700, -720, -740, -760, -780,
	-800, -820, -840, -860, -880, -900, -920, -940, -960, -980,
	-1000, -1100, -1200, -1300, -1400, -1500, -1600, -1700, -1800, -1900,
	-2000, -2250, -2500, -2750, -3000, -3500, -4000, -4500, -5000, -7500,
	-10000,
}

var tickIndex = func() map[int]int {
	m := make(map[int]int, len(tickLadder))
	for i, odds := range tickLadder {
		m[odds] = i
	}
	return m
}()

// IsValidOdds reports whether the value lies on the exchange's tick grid.
func IsValidOdds(american int) bool {
	_, ok := tickIndex[american]
	return ok
}

// NextTickTowardLay moves a price steps ticks in the direction that is more
// attractive to whoever takes the other side, i.e. less attractive to a
// bettor at this price. The American scale is not integer-linear at the
// even-money boundary; stepping follows the ladder, so the tick below +101 is
// +100 and the tick below that is -101.
//
// The returned bool reports clamping: when fewer than steps ticks remain
// before the end of the grid, the result is the last valid tick.
func NextTickTowardLay(american, steps int) (int, bool, error) {
	if steps < 0 {
		return 0, false, fmt.Errorf("steps must be >= 0, got %d", steps)
	}

	idx, ok := tickIndex[american]
	if !ok {
		return 0, false, fmt.Errorf("%w: %d is not on the exchange tick grid", ErrInvalidOdds, american)
	}

	target := idx + steps
	if target >= len(tickLadder) {
		return tickLadder[len(tickLadder)-1], true, nil
	}

	return tickLadder[target], false, nil
}

// TickDistance returns the number of grid positions between two valid prices.
// Positive when b is further toward the lay side than a.
func TickDistance(a, b int) (int, error) {
	ia, ok := tickIndex[a]
	if !ok {
		return 0, fmt.Errorf("%w: %d is not on the exchange tick grid", ErrInvalidOdds, a)
	}
	ib, ok := tickIndex[b]
	if !ok {
		return 0, fmt.Errorf("%w: %d is not on the exchange tick grid", ErrInvalidOdds, b)
	}
	return ib - ia, nil
}
