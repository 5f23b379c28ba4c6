package chord

import (
	"strings"

	"github.com/pawelknorps/chord-lab-sub001/algorithms/chroma"
)

// functionalOverrides force spellings for pitch classes with a fixed harmonic
// role in a key. Only C is covered: the thirds of V7/ii, V7/V and V7/vi and
// the borrowed bIII and bVII roots.
var functionalOverrides = map[string]map[int]string{
	"C": {1: "C#", 3: "Eb", 6: "F#", 8: "G#", 10: "Bb"},
}

var sharpKeys = map[string]bool{
	"G": true, "D": true, "A": true, "E": true, "B": true, "F#": true, "C#": true,
	"Em": true, "Bm": true, "F#m": true, "C#m": true, "G#m": true, "D#m": true, "A#m": true,
}

var flatKeys = map[string]bool{
	"F": true, "Bb": true, "Eb": true, "Ab": true, "Db": true, "Gb": true, "Cb": true,
	"Dm": true, "Gm": true, "Cm": true, "Fm": true, "Bbm": true, "Ebm": true, "Abm": true,
}

// flatLeaning pitch classes read as flats in keys that are neither sharp nor flat
var flatLeaning = map[int]string{1: "Db", 3: "Eb", 8: "Ab", 10: "Bb"}

// flatLeaningExceptions keep sharp spellings (A minor's raised leading tone)
var flatLeaningExceptions = map[string]bool{"Am": true}

// Spell names a pitch class for the given key context such as "Db", "F#m" or
// "C major". Unknown or empty contexts fall through to the generic rules.
func Spell(pc int, keyContext string) string {
	pc = chroma.Wrap(pc)
	tonic, key := canonicalKey(keyContext)

	if overrides, ok := functionalOverrides[key]; ok {
		if name, ok := overrides[pc]; ok {
			return name
		}
	}
	if sharpKeys[key] {
		return chroma.SharpNames[pc]
	}
	if flatKeys[key] || strings.Contains(tonic, "b") {
		return chroma.FlatNames[pc]
	}
	if name, ok := flatLeaning[pc]; ok && !flatLeaningExceptions[key] {
		return name
	}
	return chroma.SharpNames[pc]
}

// canonicalKey reduces a key context to its tonic text and a "X"/"Xm" label
func canonicalKey(context string) (tonic, key string) {
	context = strings.TrimSpace(context)
	_, n, ok := chroma.ParseNote(context)
	if !ok {
		return "", context
	}
	tonic = context[:n]
	if isMinorSuffix(context[n:]) {
		return tonic, tonic + "m"
	}
	return tonic, tonic
}

func isMinorSuffix(suffix string) bool {
	suffix = strings.TrimSpace(suffix)
	switch {
	case strings.HasPrefix(suffix, "maj"), strings.HasPrefix(suffix, "Maj"):
		return false
	case strings.HasPrefix(suffix, "m"), strings.HasPrefix(suffix, "-"):
		return true
	}
	return false
}
