package tonal

import (
	"strings"

	"github.com/pawelknorps/chord-lab-sub001/algorithms/chroma"
)

// KeyMode represents major or minor mode
type KeyMode int

const (
	KeyModeMajor KeyMode = iota
	KeyModeMinor
)

// NumKeys is the size of the key state space: 12 major + 12 natural minor
const NumKeys = 24

// Sentinel segment labels that are not key centers
const (
	Chromatic = "chromatic"
	Constant  = "constant"
)

var (
	majorLabels = [12]string{"C", "Db", "D", "Eb", "E", "F", "F#", "G", "Ab", "A", "Bb", "B"}
	minorLabels = [12]string{"Cm", "C#m", "Dm", "Ebm", "Em", "Fm", "F#m", "Gm", "G#m", "Am", "Bbm", "Bm"}

	majorScale = [7]int{0, 2, 4, 5, 7, 9, 11}
	minorScale = [7]int{0, 2, 3, 5, 7, 8, 10} // natural minor
)

// Key is one of the 24 key centers
type Key struct {
	Tonic int     `json:"tonic"` // Tonic pitch class (0=C, ..., 11=B)
	Mode  KeyMode `json:"mode"`
}

// KeyAt returns the key for a state index: k<12 is major, k>=12 is minor
func KeyAt(index int) Key {
	if index >= 12 {
		return Key{Tonic: chroma.Wrap(index - 12), Mode: KeyModeMinor}
	}
	return Key{Tonic: chroma.Wrap(index), Mode: KeyModeMajor}
}

// Index returns the state index of the key
func (k Key) Index() int {
	if k.Mode == KeyModeMinor {
		return 12 + k.Tonic
	}
	return k.Tonic
}

// Label returns the key label, e.g. "Eb" or "F#m"
func (k Key) Label() string {
	if k.Mode == KeyModeMinor {
		return minorLabels[chroma.Wrap(k.Tonic)]
	}
	return majorLabels[chroma.Wrap(k.Tonic)]
}

func (k Key) String() string {
	return k.Label()
}

// Scale returns the diatonic pitch classes of the key starting at the tonic
func (k Key) Scale() [7]int {
	steps := majorScale
	if k.Mode == KeyModeMinor {
		steps = minorScale
	}
	var out [7]int
	for i, s := range steps {
		out[i] = chroma.Wrap(k.Tonic + s)
	}
	return out
}

// Degree returns the zero-based scale degree of a pitch class, or false if
// the pitch class is not diatonic to the key
func (k Key) Degree(pc int) (int, bool) {
	interval := chroma.Interval(k.Tonic, pc)
	steps := majorScale
	if k.Mode == KeyModeMinor {
		steps = minorScale
	}
	for i, s := range steps {
		if s == interval {
			return i, true
		}
	}
	return 0, false
}

// Contains reports whether a pitch class is diatonic to the key
func (k Key) Contains(pc int) bool {
	_, ok := k.Degree(pc)
	return ok
}

// Relative returns the relative major/minor key
func (k Key) Relative() Key {
	tonic, mode := GetRelativeKey(k.Tonic, k.Mode)
	return Key{Tonic: tonic, Mode: mode}
}

// ParseKey reads a key label such as "C", "Bbm", "F# minor", "Cmin" or "Ebmaj"
func ParseKey(label string) (Key, bool) {
	label = strings.TrimSpace(label)
	pc, n, ok := chroma.ParseNote(label)
	if !ok {
		return Key{}, false
	}
	suffix := strings.TrimSpace(label[n:])
	if suffix == "M" {
		return Key{Tonic: pc, Mode: KeyModeMajor}, true
	}
	switch strings.ToLower(suffix) {
	case "", "maj", "major":
		return Key{Tonic: pc, Mode: KeyModeMajor}, true
	case "m", "-", "min", "minor":
		return Key{Tonic: pc, Mode: KeyModeMinor}, true
	}
	return Key{}, false
}

// IsSentinel reports whether a segment label marks a chromatic or
// constant-structure passage rather than a key
func IsSentinel(label string) bool {
	return label == Chromatic || label == Constant
}

// GetRelativeKey returns the relative major/minor key
func GetRelativeKey(key int, mode KeyMode) (int, KeyMode) {
	if mode == KeyModeMajor {
		// Relative minor is 3 semitones down
		return chroma.Wrap(key - 3), KeyModeMinor
	}
	// Relative major is 3 semitones up
	return chroma.Wrap(key + 3), KeyModeMajor
}

// GetKeyName returns human-readable key name
func GetKeyName(key int, mode KeyMode) string {
	if mode == KeyModeMajor {
		return majorLabels[chroma.Wrap(key)] + " major"
	}
	return strings.TrimSuffix(minorLabels[chroma.Wrap(key)], "m") + " minor"
}
