package chord

import (
	"slices"

	"github.com/pawelknorps/chord-lab-sub001/algorithms/chroma"
)

// Third is the triad's third (or its suspension)
type Third string

const (
	ThirdMajor Third = "major"
	ThirdMinor Third = "minor"
	ThirdSus4  Third = "sus4"
	ThirdSus2  Third = "sus2"
)

// Fifth is the triad's fifth
type Fifth string

const (
	FifthPerfect    Fifth = "perfect"
	FifthDiminished Fifth = "diminished"
	FifthAugmented  Fifth = "augmented"
)

// Core is the mandatory triad layer of a chord
type Core struct {
	Third           Third `json:"third"`
	Fifth           Fifth `json:"fifth"`
	FullyDiminished bool  `json:"fully_diminished,omitempty"`
}

// Extension summarizes everything stacked above the triad
type Extension struct {
	HasSeventh      bool `json:"has_seventh"`
	AlterationCount int  `json:"alteration_count"`
}

// DNA is the structural decomposition of a chord symbol
type DNA struct {
	Symbol    string    `json:"symbol"`
	Root      string    `json:"root"`       // Root as written, e.g. "Db"
	RootClass int       `json:"root_class"` // Root pitch class (0=C, ..., 11=B)
	Quality   string    `json:"quality"`    // Symbol text after the root, annotations and bass removed
	Bass      string    `json:"bass,omitempty"`
	Intervals []int     `json:"intervals"` // Unique semitones above the root, ascending, always contains 0
	Degrees   []string  `json:"degrees"`   // Interval names parallel to Intervals ("1", "3m", "7M", "9b", ...)
	Notes     []string  `json:"notes"`     // Spelled note names parallel to Intervals
	Core      Core      `json:"core"`
	Extension Extension `json:"extension"`
}

// Has reports whether the chord contains the given interval above its root
func (d DNA) Has(interval int) bool {
	_, found := slices.BinarySearch(d.Intervals, chroma.Wrap(interval))
	return found
}

// PitchClasses returns the absolute pitch classes sounded by the chord
func (d DNA) PitchClasses() []int {
	pcs := make([]int, len(d.Intervals))
	for i, iv := range d.Intervals {
		pcs[i] = chroma.Wrap(d.RootClass + iv)
	}
	return pcs
}

// IsDominantSeventh reports a plain dominant seventh: major third, perfect
// fifth, minor seventh and no major seventh. Altered tensions are allowed.
func (d DNA) IsDominantSeventh() bool {
	return d.Core.Third == ThirdMajor && d.Core.Fifth == FifthPerfect &&
		d.Has(10) && !d.Has(11)
}

// IsMinorSeventh reports a minor triad with a perfect fifth and minor seventh
func (d DNA) IsMinorSeventh() bool {
	return d.Core.Third == ThirdMinor && d.Core.Fifth == FifthPerfect &&
		!d.Core.FullyDiminished && d.Has(10) && !d.Has(11)
}

// IsMajorSeventh reports a major triad carrying a major seventh
func (d DNA) IsMajorSeventh() bool {
	return d.Core.Third == ThirdMajor && d.Has(11)
}

// IsHalfDiminished reports a minor seventh flat five chord
func (d DNA) IsHalfDiminished() bool {
	return d.Core.Third == ThirdMinor && d.Core.Fifth == FifthDiminished &&
		!d.Core.FullyDiminished && d.Has(10)
}

// IsDiminishedSeventh reports a fully diminished chord
func (d DNA) IsDiminishedSeventh() bool {
	return d.Core.FullyDiminished
}

// Transpose rebuilds the chord with the same quality on a root moved by the
// given number of semitones. The new root is spelled without key context.
func (d DNA) Transpose(semitones int) (DNA, error) {
	root := Spell(chroma.Wrap(d.RootClass+semitones), "")
	return Decompose(root + d.Quality)
}

// ToneLabel names the function of an interval above the chord root: the
// chord's own tones first, then the tensions the chord type admits.
func (d DNA) ToneLabel(interval int) (string, bool) {
	interval = chroma.Wrap(interval)
	for i, iv := range d.Intervals {
		if iv == interval {
			return toneNames[d.Degrees[i]], true
		}
	}

	dominant := d.Core.Third == ThirdMajor && d.Has(10)
	switch interval {
	case 2:
		return "9", true
	case 9:
		if d.Extension.HasSeventh {
			return "13", true
		}
		return "6", true
	case 5:
		if d.Core.Third == ThirdMinor {
			return "11", true
		}
	case 6:
		if d.Core.Third == ThirdMajor && d.Core.Fifth == FifthPerfect {
			return "#11", true
		}
	case 1:
		if dominant {
			return "b9", true
		}
	case 3:
		if dominant {
			return "#9", true
		}
	case 8:
		if dominant {
			return "b13", true
		}
	}
	return "", false
}

// toneNames maps degree names to the labels reported to performers
var toneNames = map[string]string{
	"1":   "R",
	"2":   "2",
	"3m":  "m3",
	"3M":  "M3",
	"4":   "4",
	"5":   "5",
	"5d":  "b5",
	"5A":  "#5",
	"6":   "6",
	"7d":  "bb7",
	"7m":  "b7",
	"7M":  "M7",
	"9":   "9",
	"11":  "11",
	"13":  "13",
	"9b":  "b9",
	"9#":  "#9",
	"11#": "#11",
	"13b": "b13",
}
