package syncer

import "math"

// CalculateCopySize scales an observed trade down to a follower's copy
// size. The size is copyPercentage percent of the original, capped so
// the notional cost at the original price never exceeds maxTradeUSD,
// and rounded to two decimals.
func CalculateCopySize(originalSize, copyPercentage, maxTradeUSD, originalPrice float64) float64 {
	if originalPrice <= 0 || originalSize <= 0 || copyPercentage <= 0 {
		return 0
	}

	size := originalSize * copyPercentage / 100
	if maxSize := maxTradeUSD / originalPrice; size > maxSize {
		size = maxSize
	}
	if size <= 0 {
		return 0
	}

	return math.Round(size*100) / 100
}

// Slippage returns the percentage move of current away from target.
// Direction does not matter; only the magnitude is compared against a
// follow's tolerance.
func Slippage(target, current float64) float64 {
	if target == 0 {
		return 0
	}
	return math.Abs(current-target) / target * 100
}
