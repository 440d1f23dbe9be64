package calculator

// PsychologicalLevels are round-number anchors around the current price.
type PsychologicalLevels struct {
	Base       float64
	HalfAbove  float64
	WholeAbove float64
	WholeBelow float64
	HalfBelow  float64
}

// CalculatePsychologicalLevels anchors on the nearest whole number to price.
func CalculatePsychologicalLevels(price float64) PsychologicalLevels {
	base := RoundWhole(price)
	return PsychologicalLevels{
		Base:       base,
		HalfAbove:  base + 0.5,
		WholeAbove: base + 1,
		WholeBelow: base - 1,
		HalfBelow:  base - 0.5,
	}
}
