package stats

import "math"

// Percentage returns made/attempted as a percentage rounded to one decimal
// place, and exactly 0 when attempted is 0.
func Percentage(made, attempted int) float64 {
	if attempted == 0 {
		return 0
	}
	return math.Round(float64(made)/float64(attempted)*1000) / 10
}

// PerGame returns total/games rounded to one decimal place, and exactly 0
// when games is 0. total may be negative (efficiency numerators).
func PerGame(total, games int) float64 {
	if games == 0 {
		return 0
	}
	return math.Round(float64(total)/float64(games)*10) / 10
}

// roundTenth rounds a float to one decimal place.
func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
