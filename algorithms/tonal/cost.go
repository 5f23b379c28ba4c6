package tonal

import (
	"github.com/pawelknorps/chord-lab-sub001/algorithms/chord"
	"github.com/pawelknorps/chord-lab-sub001/algorithms/chroma"
)

// CostModel holds the weights of the segmentation cost functions
type CostModel struct {
	Diatonic      float64 `json:"diatonic"`       // Root in the key's scale
	Secondary     float64 `json:"secondary"`      // Root within two fifths of the tonic
	Chromatic     float64 `json:"chromatic"`      // Anything else
	Base          float64 `json:"base"`           // Per circle-of-fifths step between keys
	RelativeBonus float64 `json:"relative_bonus"` // Discount for relative major/minor moves
}

// DefaultCostModel returns the standard weights
func DefaultCostModel() CostModel {
	return CostModel{
		Diatonic:      0,
		Secondary:     2,
		Chromatic:     5,
		Base:          1,
		RelativeBonus: 0.5,
	}
}

// Fit scores how well a chord root sits in a key
func (m CostModel) Fit(rootClass int, key Key) float64 {
	switch {
	case key.Contains(rootClass):
		return m.Diatonic
	case chroma.FifthsDistance(rootClass, key.Tonic) <= 2:
		return m.Secondary
	}
	return m.Chromatic
}

// FitSymbol scores a chord symbol; unparsable symbols cost as chromatic
func (m CostModel) FitSymbol(symbol string, key Key) float64 {
	root, ok := chord.RootOf(symbol)
	if !ok {
		return m.Chromatic
	}
	return m.Fit(root, key)
}

// Transition scores a move between two keys
func (m CostModel) Transition(from, to Key) float64 {
	if from == to {
		return 0
	}
	cost := float64(chroma.FifthsDistance(from.Tonic, to.Tonic)) * m.Base
	if from.Relative() == to {
		cost -= m.RelativeBonus
	}
	return cost
}

// FitCost scores a chord symbol against a key label with the default weights.
// An unknown key label scores as chromatic.
func FitCost(symbol, key string) float64 {
	m := DefaultCostModel()
	k, ok := ParseKey(key)
	if !ok {
		return m.Chromatic
	}
	return m.FitSymbol(symbol, k)
}

// TransitionCost scores a move between two key labels with the default weights
func TransitionCost(from, to string) float64 {
	m := DefaultCostModel()
	a, okA := ParseKey(from)
	b, okB := ParseKey(to)
	if !okA || !okB {
		return 6 * m.Base
	}
	return m.Transition(a, b)
}
