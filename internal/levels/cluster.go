package levels

import (
	"math"
	"sort"

	"StockSentinel/internal/model"
)

// MaxZonesPerSide caps the clusters reported on each side of the price.
const MaxZonesPerSide = 3

// pool is a growable arena of clusters for one side of the current price,
// probed linearly in creation order.
type pool struct {
	threshold float64
	clusters  []model.Cluster
}

// absorb merges c into the first cluster whose anchor is within threshold, or
// opens a new cluster anchored at c. Anchors never move.
func (p *pool) absorb(c model.Candidate) {
	for i := range p.clusters {
		if math.Abs(p.clusters[i].Price-c.Price) <= p.threshold {
			p.clusters[i].Strength += c.Weight
			p.clusters[i].Sources = append(p.clusters[i].Sources, c.Label)
			return
		}
	}
	p.clusters = append(p.clusters, model.Cluster{
		Price:    c.Price,
		Strength: c.Weight,
		Sources:  []string{c.Label},
	})
}

// ClusterCandidates merges candidates into support and resistance zones and
// keeps the strongest few on each side. A candidate priced exactly at
// currentPrice counts as resistance.
func ClusterCandidates(candidates []model.Candidate, currentPrice, thresholdPercent float64) model.LevelSet {
	threshold := currentPrice * (thresholdPercent / 100)
	support := &pool{threshold: threshold}
	resistance := &pool{threshold: threshold}

	for _, c := range candidates {
		if c.Price < currentPrice {
			support.absorb(c)
		} else {
			resistance.absorb(c)
		}
	}

	return model.LevelSet{
		Support:    selectTop(support.clusters, descendingPrice),
		Resistance: selectTop(resistance.clusters, ascendingPrice),
	}
}

func descendingPrice(a, b model.Cluster) bool { return a.Price > b.Price }
func ascendingPrice(a, b model.Cluster) bool  { return a.Price < b.Price }

// selectTop orders clusters nearest-first, stably ranks them by strength so
// equal strengths keep the nearer zone, keeps MaxZonesPerSide and re-orders
// the survivors nearest-first.
func selectTop(clusters []model.Cluster, nearer func(a, b model.Cluster) bool) []model.Cluster {
	ranked := make([]model.Cluster, len(clusters))
	copy(ranked, clusters)

	sort.SliceStable(ranked, func(i, j int) bool { return nearer(ranked[i], ranked[j]) })
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Strength > ranked[j].Strength })

	if len(ranked) > MaxZonesPerSide {
		ranked = ranked[:MaxZonesPerSide]
	}
	sort.SliceStable(ranked, func(i, j int) bool { return nearer(ranked[i], ranked[j]) })
	return ranked
}
