package analysis

import (
	"slices"

	"github.com/pawelknorps/chord-lab-sub001/algorithms/functional"
)

// ConceptMetadata describes the chords inside a concept
type ConceptMetadata struct {
	Key           string   `json:"key"`
	RomanNumerals []string `json:"roman_numerals"`
	Target        string   `json:"target,omitempty"`
	Substitutes   []string `json:"substitutes,omitempty"`
}

// Concept is a harmonic idiom spanning a contiguous range of bars
type Concept struct {
	Type       functional.ConceptType `json:"type"`
	StartIndex int                    `json:"start_index"` // First bar
	EndIndex   int                    `json:"end_index"`   // Last bar
	FirstChord int                    `json:"first_chord"` // First slot
	LastChord  int                    `json:"last_chord"`  // Last slot
	Metadata   ConceptMetadata        `json:"metadata"`
}

// BuildConcepts folds runs of consecutive results sharing a concept type into
// concepts. Runs without a concept separate idioms but are not emitted.
func BuildConcepts(labels []functional.Result) []Concept {
	concepts := make([]Concept, 0)
	for start := 0; start < len(labels); {
		end := start
		for end+1 < len(labels) && labels[end+1].Concept == labels[start].Concept {
			end++
		}
		if labels[start].Concept != functional.ConceptNone {
			concepts = append(concepts, foldRun(labels[start:end+1]))
		}
		start = end + 1
	}
	return concepts
}

func foldRun(run []functional.Result) Concept {
	first, last := run[0], run[len(run)-1]
	concept := Concept{
		Type:       first.Concept,
		StartIndex: first.BarIndex,
		EndIndex:   last.BarIndex,
		FirstChord: first.ChordIndex,
		LastChord:  last.ChordIndex,
		Metadata: ConceptMetadata{
			Key:           first.Key,
			RomanNumerals: make([]string, 0, len(run)),
			Target:        last.Roman,
		},
	}
	for _, r := range run {
		if !slices.Contains(concept.Metadata.RomanNumerals, r.Roman) {
			concept.Metadata.RomanNumerals = append(concept.Metadata.RomanNumerals, r.Roman)
		}
		if r.Roman == "subV7" {
			concept.Metadata.Substitutes = append(concept.Metadata.Substitutes, r.Symbol)
		}
	}
	return concept
}
