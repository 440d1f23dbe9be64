package calculator

// PivotLevels holds classic floor-trader pivot levels, rounded to cents.
type PivotLevels struct {
	Pivot float64
	R1    float64
	R2    float64
	R3    float64
	S1    float64
	S2    float64
	S3    float64
}

// Resistance returns R1..R3 in order.
func (p PivotLevels) Resistance() []float64 { return []float64{p.R1, p.R2, p.R3} }

// Support returns S1..S3 in order.
func (p PivotLevels) Support() []float64 { return []float64{p.S1, p.S2, p.S3} }

// CalculatePivotPoints returns classic pivot points for the given high, low and close.
func CalculatePivotPoints(high, low, close float64) PivotLevels {
	p := (high + low + close) / 3

	r1 := 2*p - low
	s1 := 2*p - high

	r2 := p + (high - low)
	s2 := p - (high - low)

	r3 := high + 2*(p-low)
	s3 := low - 2*(high-p)

	return PivotLevels{
		Pivot: Round2(p),
		R1:    Round2(r1), R2: Round2(r2), R3: Round2(r3),
		S1: Round2(s1), S2: Round2(s2), S3: Round2(s3),
	}
}
