package game

import "math"

// NextCost returns the price of the next level of an upgrade.
// Displayed cost and the affordability check both go through here,
// so the result must be identical everywhere: floor(base * mult^level).
func NextCost(baseCost, multiplier float64, level int) float64 {
	if level <= 0 {
		return math.Floor(baseCost)
	}
	return math.Floor(baseCost * math.Pow(multiplier, float64(level)))
}
