package tonal

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/pawelknorps/chord-lab-sub001/algorithms/chord"
	"github.com/pawelknorps/chord-lab-sub001/algorithms/chroma"
	"github.com/pawelknorps/chord-lab-sub001/logging"
)

// Slot is one chord occurrence in a chart
type Slot struct {
	Bar    int    `json:"bar"`    // Zero-based bar index
	Symbol string `json:"symbol"` // Chord symbol as written
}

// Segment is a maximal run of consecutive slots sharing one key label
type Segment struct {
	StartBar  int    `json:"start_bar"`
	EndBar    int    `json:"end_bar"`
	StartSlot int    `json:"start_slot"`
	EndSlot   int    `json:"end_slot"`
	Key       string `json:"key"` // Key label or a sentinel (Chromatic, Constant)
}

// SegmentationParams contains parameters for key segmentation
type SegmentationParams struct {
	Costs           CostModel `json:"costs"`
	DetectSentinels bool      `json:"detect_sentinels"` // Mark chromatic and constant-structure runs
	MinRun          int       `json:"min_run"`          // Minimum slots in a sentinel run
}

// DefaultSegmentationParams returns default segmentation parameters
func DefaultSegmentationParams() SegmentationParams {
	return SegmentationParams{
		Costs:           DefaultCostModel(),
		DetectSentinels: true,
		MinRun:          3,
	}
}

// SegmentationResult holds the decoded key path and its segments
type SegmentationResult struct {
	Path     []string  `json:"path"`     // One key label per slot
	Segments []Segment `json:"segments"` // Ordered partition of the slots
	Cost     float64   `json:"cost"`     // Total cost of the decoded path
}

// Segmenter infers key centers over a chord sequence with a Viterbi search
// over the 24 major and natural minor keys. It holds no per-call state and
// is safe for concurrent use.
type Segmenter struct {
	params      SegmentationParams
	transitions []float64 // NumKeys x NumKeys, from*NumKeys+to
	logger      logging.Logger
}

// NewSegmenter creates a segmenter and precomputes the transition table
func NewSegmenter(params SegmentationParams) *Segmenter {
	if params.MinRun < 2 {
		params.MinRun = 2
	}
	s := &Segmenter{
		params:      params,
		transitions: make([]float64, NumKeys*NumKeys),
		logger:      logging.WithFields(logging.Fields{"component": "segmentation"}),
	}
	for j := range NumKeys {
		for k := range NumKeys {
			s.transitions[j*NumKeys+k] = params.Costs.Transition(KeyAt(j), KeyAt(k))
		}
	}
	return s
}

// SetLogger replaces the segmenter's logger
func (s *Segmenter) SetLogger(logger logging.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// GetParameters returns the segmenter's parameters
func (s *Segmenter) GetParameters() SegmentationParams {
	return s.params
}

// Segment decodes the cheapest key path for the slots. Ties are broken
// toward the lowest key index. Empty input yields an empty result.
func (s *Segmenter) Segment(slots []Slot) SegmentationResult {
	n := len(slots)
	if n == 0 {
		return SegmentationResult{Path: []string{}, Segments: []Segment{}}
	}

	chords := make([]*chord.DNA, n)
	fits := make([]float64, n*NumKeys)
	for i, slot := range slots {
		if dna, err := chord.Decompose(slot.Symbol); err == nil {
			chords[i] = &dna
		}
		for k := range NumKeys {
			if chords[i] == nil {
				fits[i*NumKeys+k] = s.params.Costs.Chromatic
				continue
			}
			fits[i*NumKeys+k] = s.params.Costs.Fit(chords[i].RootClass, KeyAt(k))
		}
	}

	cost := make([]float64, n*NumKeys)
	back := make([]int, n*NumKeys)
	copy(cost[:NumKeys], fits[:NumKeys])
	for i := 1; i < n; i++ {
		prev := cost[(i-1)*NumKeys : i*NumKeys]
		for k := range NumKeys {
			best, bestJ := math.Inf(1), 0
			for j := range prev {
				// strict comparison keeps the lowest j on ties
				c := prev[j] + s.transitions[j*NumKeys+k]
				if c < best {
					best, bestJ = c, j
				}
			}
			cost[i*NumKeys+k] = best + fits[i*NumKeys+k]
			back[i*NumKeys+k] = bestJ
		}
	}

	last := cost[(n-1)*NumKeys:]
	state := floats.MinIdx(last)
	total := last[state]

	states := make([]int, n)
	for i := n - 1; i >= 0; i-- {
		states[i] = state
		state = back[i*NumKeys+state]
	}

	path := make([]string, n)
	for i, k := range states {
		path[i] = KeyAt(k).Label()
	}
	if s.params.DetectSentinels {
		s.markConstantStructure(chords, path)
		s.markChromatic(fits, states, path)
	}

	segments := BuildSegments(slots, path)
	s.logger.Debug("Segmented chart", logging.Fields{
		"slots":    n,
		"segments": len(segments),
		"cost":     total,
	})

	return SegmentationResult{Path: path, Segments: segments, Cost: total}
}

// markConstantStructure labels runs of identical chord qualities whose roots
// move by a repeated interval other than a unison, fourth or fifth
func (s *Segmenter) markConstantStructure(chords []*chord.DNA, path []string) {
	n := len(chords)
	for i := 0; i < n-1; {
		if chords[i] == nil || chords[i+1] == nil || chords[i].Quality != chords[i+1].Quality {
			i++
			continue
		}
		step := chroma.Interval(chords[i].RootClass, chords[i+1].RootClass)
		j := i + 1
		for j+1 < n && chords[j+1] != nil &&
			chords[j+1].Quality == chords[i].Quality &&
			chroma.Interval(chords[j].RootClass, chords[j+1].RootClass) == step {
			j++
		}
		if j-i+1 >= s.params.MinRun && step != 0 && step != 5 && step != 7 {
			for x := i; x <= j; x++ {
				path[x] = Constant
			}
		}
		i = j
	}
}

// markChromatic labels runs of slots that fit their decoded key only at the
// chromatic cost
func (s *Segmenter) markChromatic(fits []float64, states []int, path []string) {
	runStart := -1
	flush := func(end int) {
		if runStart >= 0 && end-runStart >= s.params.MinRun {
			for x := runStart; x < end; x++ {
				path[x] = Chromatic
			}
		}
		runStart = -1
	}
	for i, k := range states {
		if path[i] != Constant && fits[i*NumKeys+k] == s.params.Costs.Chromatic {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		flush(i)
	}
	flush(len(states))
}

// BuildSegments merges consecutive equal labels into segments in one scan
func BuildSegments(slots []Slot, path []string) []Segment {
	segments := make([]Segment, 0)
	for i, label := range path {
		if last := len(segments) - 1; last >= 0 && segments[last].Key == label {
			segments[last].EndBar = slots[i].Bar
			segments[last].EndSlot = i
			continue
		}
		segments = append(segments, Segment{
			StartBar:  slots[i].Bar,
			EndBar:    slots[i].Bar,
			StartSlot: i,
			EndSlot:   i,
			Key:       label,
		})
	}
	return segments
}
