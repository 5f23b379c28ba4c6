package functional

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawelknorps/chord-lab-sub001/algorithms/tonal"
)

func slotsOf(symbols ...string) []tonal.Slot {
	slots := make([]tonal.Slot, len(symbols))
	for i, symbol := range symbols {
		slots[i] = tonal.Slot{Bar: i, Symbol: symbol}
	}
	return slots
}

func wholeChart(n int, key string) []tonal.Segment {
	return []tonal.Segment{{StartBar: 0, EndBar: n - 1, StartSlot: 0, EndSlot: n - 1, Key: key}}
}

func romans(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Roman
	}
	return out
}

func concepts(results []Result) []ConceptType {
	out := make([]ConceptType, len(results))
	for i, r := range results {
		out[i] = r.Concept
	}
	return out
}

func TestLabelMajorIIVI(t *testing.T) {
	labeler := NewLabeler(DefaultParams())
	results := labeler.Label(slotsOf("Dm7", "G7", "Cmaj7"), wholeChart(3, "C"), "C")
	require.Len(t, results, 3)

	patterns := []string{`(?i)^ii7?$`, `(?i)^V7?$`, `(?i)^Imaj7?$`}
	for i, pattern := range patterns {
		assert.Regexp(t, regexp.MustCompile(pattern), results[i].Roman)
	}
	assert.Equal(t, []string{"ii7", "V7", "Imaj7"}, romans(results))
	assert.Contains(t, concepts(results), MajorIIVI)

	for i, r := range results {
		assert.Equal(t, i, r.ChordIndex)
		assert.Equal(t, i, r.BarIndex)
		assert.Equal(t, "C", r.Key)
		assert.Empty(t, r.SegmentLabel)
	}
}

func TestLabelIncompleteIIV(t *testing.T) {
	results := NewLabeler(DefaultParams()).Label(slotsOf("Dm7", "G7"), wholeChart(2, "C"), "C")
	assert.Equal(t, []string{"ii7", "V7"}, romans(results))
	assert.Equal(t, []ConceptType{ConceptNone, ConceptNone}, concepts(results))
}

func TestLabelTritoneSubstitution(t *testing.T) {
	results := NewLabeler(DefaultParams()).Label(slotsOf("Db7", "Cmaj7"), wholeChart(2, "C"), "C")
	require.Len(t, results, 2)
	assert.Equal(t, "subV7", results[0].Roman)
	assert.Equal(t, TritoneSubstitution, results[0].Concept)
	assert.Equal(t, "Imaj7", results[1].Roman)
	assert.Equal(t, ConceptNone, results[1].Concept)
}

func TestLabelSentinelSegments(t *testing.T) {
	slots := slotsOf("Cmaj7", "Dmaj7", "Emaj7", "N.C.")
	for _, sentinel := range []string{tonal.Constant, tonal.Chromatic} {
		t.Run(sentinel, func(t *testing.T) {
			results := NewLabeler(DefaultParams()).Label(slots, wholeChart(len(slots), sentinel), "C")
			for _, r := range results {
				assert.Equal(t, KeyShiftLabel, r.SegmentLabel)
				assert.Equal(t, sentinel, r.Key)
				assert.Equal(t, ConceptNone, r.Concept)
			}
			assert.Equal(t, []string{"C", "D", "E", "N."}, romans(results))
		})
	}
}

func TestLabelMinorIIVi(t *testing.T) {
	labeler := NewLabeler(DefaultParams())

	results := labeler.Label(slotsOf("Dm7b5", "G7", "Cm"), wholeChart(3, "Cm"), "")
	assert.Equal(t, []string{"iiø7", "V7", "i"}, romans(results))
	assert.Equal(t, MinorIIVi, results[0].Concept)

	// too close to the end of the chart
	results = labeler.Label(slotsOf("Cm", "Dm7b5", "G7"), wholeChart(3, "Cm"), "")
	assert.Equal(t, "iiø7", results[1].Roman)
	assert.Equal(t, ConceptNone, results[1].Concept)

	// half-diminished in a major key is not tagged
	results = labeler.Label(slotsOf("Bm7b5", "E7", "Am"), wholeChart(3, "C"), "")
	assert.Equal(t, "viiø7", results[0].Roman)
	assert.Equal(t, ConceptNone, results[0].Concept)
}

func TestLabelSecondaryDominants(t *testing.T) {
	slots := slotsOf("C", "E7", "Am", "D7", "G7", "C")

	results := NewLabeler(DefaultParams()).Label(slots, wholeChart(len(slots), "C"), "C")
	assert.Equal(t, []string{"I", "V7/vi", "vi", "V7/V", "V7", "I"}, romans(results))
	assert.Equal(t, SecondaryDominant, results[1].Concept)
	assert.Equal(t, SecondaryDominant, results[3].Concept)
	assert.Equal(t, ConceptNone, results[4].Concept)

	params := DefaultParams()
	params.DetectSecondaryDominants = false
	results = NewLabeler(params).Label(slots, wholeChart(len(slots), "C"), "C")
	assert.Equal(t, []string{"I", "III7", "vi", "II7", "V7", "I"}, romans(results))
	assert.NotContains(t, concepts(results), SecondaryDominant)
}

func TestLabelColtraneChanges(t *testing.T) {
	slots := slotsOf("Bmaj7", "D7", "Gmaj7", "Bb7", "Ebmaj7")

	results := NewLabeler(DefaultParams()).Label(slots, wholeChart(len(slots), "B"), "")
	assert.Equal(t, []ConceptType{
		ConceptNone, ColtraneChanges, ColtraneChanges, ColtraneChanges, ColtraneChanges,
	}, concepts(results))
	assert.Equal(t, "Imaj7", results[0].Roman)

	params := DefaultParams()
	params.DetectColtrane = false
	results = NewLabeler(params).Label(slots, wholeChart(len(slots), "B"), "")
	assert.NotContains(t, concepts(results), ColtraneChanges)
	assert.Equal(t, "V7/III", results[3].Roman)
	assert.Equal(t, SecondaryDominant, results[3].Concept)
}

func TestLabelFallbacks(t *testing.T) {
	labeler := NewLabeler(DefaultParams())

	results := labeler.Label(slotsOf("F#7", "N.C.", "Ebmaj7"), nil, "Cm")
	assert.Equal(t, []string{"F#", "N.", "bIIImaj7"}, romans(results))
	for _, r := range results {
		assert.Equal(t, "Cm", r.Key)
	}

	results = labeler.Label(slotsOf("Cmaj7"), nil, "")
	assert.Equal(t, "C", results[0].Key)
	assert.Equal(t, "Imaj7", results[0].Roman)

	assert.Empty(t, labeler.Label(nil, nil, "C"))
}

func TestLabelSegmentLookupByBar(t *testing.T) {
	slots := []tonal.Slot{
		{Bar: 0, Symbol: "Cmaj7"},
		{Bar: 0, Symbol: "A7"},
		{Bar: 1, Symbol: "Ebmaj7"},
		{Bar: 2, Symbol: "Gmaj7"},
	}
	segments := []tonal.Segment{
		{StartBar: 0, EndBar: 0, Key: "C"},
		{StartBar: 1, EndBar: 1, Key: "Eb"},
	}
	results := NewLabeler(DefaultParams()).Label(slots, segments, "G")
	assert.Equal(t, []string{"C", "C", "Eb", "G"}, []string{results[0].Key, results[1].Key, results[2].Key, results[3].Key})
	assert.Equal(t, "Imaj7", results[2].Roman)
	assert.Equal(t, "Imaj7", results[3].Roman)
}

func TestLabelAgainstSegmenter(t *testing.T) {
	slots := slotsOf("Dm7", "G7", "Cmaj7", "Db7", "Cmaj7")
	seg := tonal.NewSegmenter(tonal.DefaultSegmentationParams()).Segment(slots)
	results := NewLabeler(DefaultParams()).Label(slots, seg.Segments, "C")

	require.Len(t, results, len(slots))
	assert.Equal(t, "subV7", results[3].Roman)
	assert.Equal(t, TritoneSubstitution, results[3].Concept)
	assert.Equal(t, MajorIIVI, results[0].Concept)
}
