package calculator

// FibonacciLevels holds retracement prices measured down from the high.
type FibonacciLevels struct {
	L236 float64
	L382 float64
	L500 float64
	L618 float64
	L786 float64
}

// CalculateFibonacciLevels returns retracements at 23.6/38.2/50/61.8/78.6% of the range.
func CalculateFibonacciLevels(high, low float64) FibonacciLevels {
	diff := high - low
	return FibonacciLevels{
		L236: Round2(high - 0.236*diff),
		L382: Round2(high - 0.382*diff),
		L500: Round2(high - 0.5*diff),
		L618: Round2(high - 0.618*diff),
		L786: Round2(high - 0.786*diff),
	}
}
