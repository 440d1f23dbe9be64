package model

// PriceWindow is the input of a level computation: a recent trading range
// plus the latest quote.
type PriceWindow struct {
	High         float64 `json:"high"`
	Low          float64 `json:"low"`
	Close        float64 `json:"close"`
	CurrentPrice float64 `json:"current_price"`
}

// Candidate is a named price level with an importance weight.
type Candidate struct {
	Label  string
	Price  float64
	Weight float64
}

// Cluster aggregates candidates that sit within tolerance of an anchor price.
type Cluster struct {
	Price    float64  `json:"price"`
	Strength float64  `json:"strength"`
	Sources  []string `json:"sources"`
}

// LevelSet is the ranked output: up to three zones per side, nearest first.
type LevelSet struct {
	Support    []Cluster `json:"support"`
	Resistance []Cluster `json:"resistance"`
}

// SupportPrices returns the support anchor prices in order.
func (ls LevelSet) SupportPrices() []float64 { return prices(ls.Support) }

// ResistancePrices returns the resistance anchor prices in order.
func (ls LevelSet) ResistancePrices() []float64 { return prices(ls.Resistance) }

func prices(cs []Cluster) []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = c.Price
	}
	return out
}
