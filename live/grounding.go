package live

import (
	"time"

	"github.com/pawelknorps/chord-lab-sub001/algorithms/chord"
	"github.com/pawelknorps/chord-lab-sub001/algorithms/chroma"
	"github.com/pawelknorps/chord-lab-sub001/algorithms/common"
	"github.com/pawelknorps/chord-lab-sub001/logging"
)

// PitchSample is one pitch observation from a performer
type PitchSample struct {
	Frequency float64   `json:"frequency" yaml:"frequency"`                     // Hz
	Timestamp time.Time `json:"timestamp,omitempty" yaml:"timestamp,omitempty"` // Zero when unknown
}

// Overrides are transient corrections layered over the static analysis.
// Empty fields mean the check did not fire.
type Overrides struct {
	Roman     string `json:"roman,omitempty"`
	Pedal     string `json:"pedal,omitempty"`
	ChordTone string `json:"chord_tone,omitempty"`
}

// IsEmpty reports whether no override fired
func (o Overrides) IsEmpty() bool {
	return o == Overrides{}
}

// Params contains parameters for live grounding
type Params struct {
	MinSamples      int           `json:"min_samples"`      // Samples required before any check runs
	SubstituteShare float64       `json:"substitute_share"` // Share of classified samples needed for a tritone substitute
	BassCutoffHz    float64       `json:"bass_cutoff_hz"`   // Samples below this are bass
	PedalShare      float64       `json:"pedal_share"`      // Share of bass samples needed for a pedal
	ReferencePitch  float64       `json:"reference_pitch"`  // A4 in Hz
	BufferSize      int           `json:"buffer_size"`      // Pitch buffer capacity
	PollInterval    time.Duration `json:"poll_interval"`    // Monitor cadence
}

// DefaultParams returns default live grounding parameters
func DefaultParams() Params {
	return Params{
		MinSamples:      8,
		SubstituteShare: 0.35,
		BassCutoffHz:    250,
		PedalShare:      0.4,
		ReferencePitch:  chroma.DefaultReferencePitch,
		BufferSize:      60,
		PollInterval:    150 * time.Millisecond,
	}
}

// Grounder reconciles the chart's current chord with what the performer
// actually plays. It keeps no state between calls.
type Grounder struct {
	params Params
	logger logging.Logger
}

// NewGrounder creates a grounder
func NewGrounder(params Params) *Grounder {
	return &Grounder{
		params: params,
		logger: logging.WithFields(logging.Fields{"component": "live"}),
	}
}

// SetLogger replaces the grounder's logger
func (g *Grounder) SetLogger(logger logging.Logger) {
	if logger != nil {
		g.logger = logger
	}
}

// GetParameters returns the grounder's parameters
func (g *Grounder) GetParameters() Params {
	return g.params
}

// Overrides runs the substitution, pedal and chord-tone checks over a
// snapshot of samples. Fewer than MinSamples samples yield empty overrides.
func (g *Grounder) Overrides(chartChord string, samples []PitchSample) Overrides {
	var out Overrides
	if len(samples) < g.params.MinSamples {
		return out
	}

	chart, err := chord.Decompose(chartChord)
	parsed := err == nil
	context := ""
	if parsed {
		context = chart.Root
	}

	effective := chart
	if parsed && chart.IsDominantSeventh() {
		if sub, ok := g.resolveSubstitute(chart, samples); ok {
			out.Roman = "subV7"
			effective = sub
		}
	}

	out.Pedal = g.detectPedal(samples, context)

	if parsed {
		if latest, ok := latestSample(samples); ok {
			if pc, ok := chroma.FrequencyToPitchClass(latest.Frequency, g.params.ReferencePitch); ok {
				out.ChordTone, _ = effective.ToneLabel(chroma.Interval(effective.RootClass, pc))
			}
		}
	}

	if !out.IsEmpty() {
		g.logger.Debug("Live overrides", logging.Fields{
			"chord":      chartChord,
			"samples":    len(samples),
			"roman":      out.Roman,
			"pedal":      out.Pedal,
			"chord_tone": out.ChordTone,
		})
	}
	return out
}

// resolveSubstitute decides whether the samples favour the tritone
// substitute of a dominant seventh over the chart chord
func (g *Grounder) resolveSubstitute(chart chord.DNA, samples []PitchSample) (chord.DNA, bool) {
	sub, err := chart.Transpose(6)
	if err != nil {
		return chart, false
	}
	chartSet := pitchClassSet(chart.PitchClasses())
	subSet := pitchClassSet(sub.PitchClasses())

	var chartCount, subCount, classified float64
	for _, s := range samples {
		pc, ok := chroma.FrequencyToPitchClass(s.Frequency, g.params.ReferencePitch)
		if !ok {
			continue
		}
		inChart, inSub := chartSet[pc], subSet[pc]
		if inChart {
			chartCount++
		}
		if inSub {
			subCount++
		}
		if inChart || inSub {
			classified++
		}
	}

	share := common.Share(subCount, classified)
	if subCount > 0 && share >= g.params.SubstituteShare && subCount >= chartCount {
		return sub, true
	}
	return chart, false
}

// detectPedal finds a pitch class dominating the bass register
func (g *Grounder) detectPedal(samples []PitchSample, context string) string {
	profile := chroma.NewPitchClassProfile()
	bass := 0
	for _, s := range samples {
		if s.Frequency <= 0 || s.Frequency >= g.params.BassCutoffHz {
			continue
		}
		if pc, ok := chroma.FrequencyToPitchClass(s.Frequency, g.params.ReferencePitch); ok {
			profile.Add(pc, 1)
			bass++
		}
	}
	if bass == 0 || bass < g.params.MinSamples {
		return ""
	}
	pc, share := profile.Dominant()
	if share < g.params.PedalShare {
		return ""
	}
	return chord.Spell(pc, context)
}

// latestSample picks the newest timestamped sample, or the last one when no
// sample carries a timestamp
func latestSample(samples []PitchSample) (PitchSample, bool) {
	if len(samples) == 0 {
		return PitchSample{}, false
	}
	latest := -1
	for i, s := range samples {
		if s.Timestamp.IsZero() {
			continue
		}
		if latest < 0 || !s.Timestamp.Before(samples[latest].Timestamp) {
			latest = i
		}
	}
	if latest < 0 {
		return samples[len(samples)-1], true
	}
	return samples[latest], true
}

func pitchClassSet(pcs []int) map[int]bool {
	set := make(map[int]bool, len(pcs))
	for _, pc := range pcs {
		set[pc] = true
	}
	return set
}
