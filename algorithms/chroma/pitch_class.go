package chroma

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// DefaultReferencePitch is the frequency of A4 in Hz
const DefaultReferencePitch = 440.0

// Pitch class spellings indexed by pitch class (0=C, 1=C#/Db, ..., 11=B)
var (
	SharpNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	FlatNames  = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}
)

// CircleOfFifths lists pitch classes in fifths order starting from C
var CircleOfFifths = [12]int{0, 7, 2, 9, 4, 11, 6, 1, 8, 3, 10, 5}

var letterClasses = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// Wrap folds any integer into the 0-11 pitch class range
func Wrap(pc int) int {
	return ((pc % 12) + 12) % 12
}

// Interval returns the upward distance in semitones from one pitch class to another
func Interval(from, to int) int {
	return Wrap(to - from)
}

// ParseNote reads a note name at the start of s (letter A-G plus any run of
// '#' or 'b') and returns its pitch class and the number of bytes consumed.
func ParseNote(s string) (pc int, n int, ok bool) {
	if s == "" {
		return 0, 0, false
	}
	base, found := letterClasses[s[0]]
	if !found {
		return 0, 0, false
	}
	pc, n = base, 1
	for n < len(s) {
		switch s[n] {
		case '#':
			pc++
		case 'b':
			pc--
		default:
			return Wrap(pc), n, true
		}
		n++
	}
	return Wrap(pc), n, true
}

// PitchClassOf parses a complete note name such as "Eb" or "F#"
func PitchClassOf(name string) (int, bool) {
	pc, n, ok := ParseNote(strings.TrimSpace(name))
	if !ok || n != len(strings.TrimSpace(name)) {
		return 0, false
	}
	return pc, true
}

// FrequencyToMIDI converts a frequency in Hz to a fractional MIDI note number
func FrequencyToMIDI(frequency, referencePitch float64) float64 {
	if referencePitch <= 0 {
		referencePitch = DefaultReferencePitch
	}
	// A4 = MIDI note 69
	return 69 + 12*math.Log2(frequency/referencePitch)
}

// FrequencyToPitchClass maps a frequency to the nearest equal-tempered pitch class.
// Non-positive or non-finite frequencies are rejected.
func FrequencyToPitchClass(frequency, referencePitch float64) (int, bool) {
	if frequency <= 0 || math.IsNaN(frequency) || math.IsInf(frequency, 0) {
		return 0, false
	}
	midi := math.Round(FrequencyToMIDI(frequency, referencePitch))
	return Wrap(int(midi)), true
}

// FifthsPosition returns where a pitch class sits on the circle of fifths (0-11)
func FifthsPosition(pc int) int {
	// 7 is its own inverse mod 12
	return Wrap(pc * 7)
}

// FifthsDistance is the shortest number of fifth steps between two pitch classes (0-6)
func FifthsDistance(a, b int) int {
	d := Wrap(FifthsPosition(a) - FifthsPosition(b))
	if d > 6 {
		d = 12 - d
	}
	return d
}

// PitchClassProfile is a 12-bin distribution of pitch class occurrences
type PitchClassProfile struct {
	Counts []float64 // raw weight per pitch class
	Total  float64   // sum of all weights
}

// NewPitchClassProfile creates an empty profile
func NewPitchClassProfile() *PitchClassProfile {
	return &PitchClassProfile{Counts: make([]float64, 12)}
}

// Add accumulates weight on a pitch class
func (p *PitchClassProfile) Add(pc int, weight float64) {
	p.Counts[Wrap(pc)] += weight
	p.Total += weight
}

// Dominant returns the heaviest pitch class and its share of the total weight.
// Ties resolve to the lowest pitch class.
func (p *PitchClassProfile) Dominant() (int, float64) {
	if p.Total <= 0 {
		return 0, 0
	}
	idx := floats.MaxIdx(p.Counts)
	return idx, p.Counts[idx] / p.Total
}

// Normalized returns a copy of the profile scaled to sum to 1
func (p *PitchClassProfile) Normalized() []float64 {
	out := make([]float64, 12)
	copy(out, p.Counts)
	if sum := floats.Sum(out); sum > 1e-10 {
		floats.Scale(1/sum, out)
	}
	return out
}
