package tonal

import (
	"sort"

	"github.com/pawelknorps/chord-lab-sub001/algorithms/chord"
	"github.com/pawelknorps/chord-lab-sub001/algorithms/chroma"
	"github.com/pawelknorps/chord-lab-sub001/algorithms/common"
)

// KeyProfile represents different key detection profiles
type KeyProfile int

const (
	KeyProfileKrumhansl KeyProfile = iota
	KeyProfileTemperley
)

// KeyCandidate represents a potential key with confidence
type KeyCandidate struct {
	Key        int     `json:"key"`        // Tonic pitch class (0=C, 1=C#, ..., 11=B)
	Mode       KeyMode `json:"mode"`       // Major or Minor
	Label      string  `json:"label"`      // Segment-style label, e.g. "Bbm"
	KeyName    string  `json:"key_name"`   // Human-readable key name
	Confidence float64 `json:"confidence"` // Profile correlation (-1 to 1)
}

// KeyEstimationResult contains key estimation results
type KeyEstimationResult struct {
	Key        int     `json:"key"`
	Mode       KeyMode `json:"mode"`
	Label      string  `json:"label"`
	KeyName    string  `json:"key_name"`
	Confidence float64 `json:"confidence"`

	Candidates        []KeyCandidate `json:"candidates"`
	CorrelationScores []float64      `json:"correlation_scores"` // Indexed like key states
	Clarity           float64        `json:"clarity"`            // Margin between best and runner-up
	KeyProfile        string         `json:"key_profile"`
}

// KeyEstimationParams contains parameters for key estimation
type KeyEstimationParams struct {
	Profile       KeyProfile `json:"profile"`
	MaxCandidates int        `json:"max_candidates"` // Maximum candidates to return
	RootWeight    float64    `json:"root_weight"`    // Histogram weight of chord roots
	ToneWeight    float64    `json:"tone_weight"`    // Histogram weight of other chord tones
}

// KeyProfileTemplate contains template for key profile
type KeyProfileTemplate struct {
	MajorProfile []float64 `json:"major_profile"`
	MinorProfile []float64 `json:"minor_profile"`
	Name         string    `json:"name"`
}

var keyProfiles = map[KeyProfile]KeyProfileTemplate{
	// Krumhansl-Schmuckler profiles (empirically derived)
	KeyProfileKrumhansl: {
		MajorProfile: []float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88},
		MinorProfile: []float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17},
		Name:         "Krumhansl-Schmuckler",
	},
	// Temperley profiles (corpus-based)
	KeyProfileTemperley: {
		MajorProfile: []float64{5.0, 2.0, 3.5, 2.0, 4.5, 4.0, 2.0, 4.5, 2.0, 3.5, 1.5, 4.0},
		MinorProfile: []float64{5.0, 2.0, 3.5, 4.5, 2.0, 4.0, 2.0, 4.5, 3.5, 2.0, 1.5, 4.0},
		Name:         "Temperley",
	},
}

// KeyEstimator estimates the home key of a chord chart by correlating its
// pitch-class histogram with rotated key profiles
type KeyEstimator struct {
	params KeyEstimationParams
}

// NewKeyEstimator creates a new key estimator with default parameters
func NewKeyEstimator() *KeyEstimator {
	return NewKeyEstimatorWithParams(KeyEstimationParams{
		Profile:       KeyProfileKrumhansl,
		MaxCandidates: 5,
		RootWeight:    2.0,
		ToneWeight:    1.0,
	})
}

// NewKeyEstimatorWithParams creates a key estimator with custom parameters
func NewKeyEstimatorWithParams(params KeyEstimationParams) *KeyEstimator {
	if _, ok := keyProfiles[params.Profile]; !ok {
		params.Profile = KeyProfileKrumhansl
	}
	if params.MaxCandidates < 1 {
		params.MaxCandidates = 1
	}
	return &KeyEstimator{params: params}
}

// ChordProfile builds a pitch-class histogram from chord symbols, skipping
// symbols that cannot be parsed
func (ke *KeyEstimator) ChordProfile(symbols []string) *chroma.PitchClassProfile {
	pcp := chroma.NewPitchClassProfile()
	for _, symbol := range symbols {
		dna, err := chord.Decompose(symbol)
		if err != nil {
			continue
		}
		for i, pc := range dna.PitchClasses() {
			if dna.Intervals[i] == 0 {
				pcp.Add(pc, ke.params.RootWeight)
				continue
			}
			pcp.Add(pc, ke.params.ToneWeight)
		}
	}
	return pcp
}

// EstimateFromChords estimates the key of a chord sequence. It reports false
// when no symbol could be parsed.
func (ke *KeyEstimator) EstimateFromChords(symbols []string) (KeyEstimationResult, bool) {
	pcp := ke.ChordProfile(symbols)
	if pcp.Total <= 0 {
		return KeyEstimationResult{}, false
	}
	return ke.EstimateKey(pcp), true
}

// EstimateKey estimates musical key from a pitch-class profile
func (ke *KeyEstimator) EstimateKey(pcp *chroma.PitchClassProfile) KeyEstimationResult {
	profile := keyProfiles[ke.params.Profile]
	values := pcp.Normalized()

	scores := make([]float64, NumKeys)
	candidates := make([]KeyCandidate, 0, NumKeys)
	for index := range NumKeys {
		key := KeyAt(index)
		template := profile.MajorProfile
		if key.Mode == KeyModeMinor {
			template = profile.MinorProfile
		}
		scores[index] = correlateWithProfile(values, template, key.Tonic)
		candidates = append(candidates, KeyCandidate{
			Key:        key.Tonic,
			Mode:       key.Mode,
			Label:      key.Label(),
			KeyName:    GetKeyName(key.Tonic, key.Mode),
			Confidence: scores[index],
		})
	}

	// Stable sort keeps the lowest key index first among equal scores
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	clarity := 0.0
	if candidates[0].Confidence > 0 {
		clarity = common.Clamp((candidates[0].Confidence-candidates[1].Confidence)/candidates[0].Confidence, 0, 1)
	}
	if len(candidates) > ke.params.MaxCandidates {
		candidates = candidates[:ke.params.MaxCandidates]
	}

	best := candidates[0]
	return KeyEstimationResult{
		Key:               best.Key,
		Mode:              best.Mode,
		Label:             best.Label,
		KeyName:           best.KeyName,
		Confidence:        best.Confidence,
		Candidates:        candidates,
		CorrelationScores: scores,
		Clarity:           clarity,
		KeyProfile:        profile.Name,
	}
}

// correlateWithProfile correlates a histogram with a profile rotated to the tonic
func correlateWithProfile(values, profile []float64, tonic int) float64 {
	rotated := make([]float64, len(profile))
	for i := range profile {
		rotated[i] = profile[chroma.Wrap(i-tonic)]
	}
	return common.Correlation(values, rotated)
}
