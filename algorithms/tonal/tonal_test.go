package tonal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		input string
		label string
		ok    bool
	}{
		{"C", "C", true},
		{"Bb", "Bb", true},
		{"A#", "Bb", true},
		{"Am", "Am", true},
		{"F# minor", "F#m", true},
		{"Gbm", "F#m", true},
		{"Cmin", "Cm", true},
		{"C-", "Cm", true},
		{"Ebmaj", "Eb", true},
		{"CM", "C", true},
		{" D major ", "D", true},
		{"H", "", false},
		{"Cdorian", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			key, ok := ParseKey(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.label, key.Label())
			}
		})
	}
}

func TestKeyIndexRoundTrip(t *testing.T) {
	for index := range NumKeys {
		key := KeyAt(index)
		assert.Equal(t, index, key.Index())
		parsed, ok := ParseKey(key.Label())
		require.True(t, ok, key.Label())
		assert.Equal(t, key, parsed)
	}
}

func TestKeyScaleAndRelative(t *testing.T) {
	am, _ := ParseKey("Am")
	assert.Equal(t, [7]int{9, 11, 0, 2, 4, 5, 7}, am.Scale())
	assert.Equal(t, "C", am.Relative().Label())

	eb, _ := ParseKey("Eb")
	assert.Equal(t, "Cm", eb.Relative().Label())

	degree, ok := eb.Degree(10)
	assert.True(t, ok)
	assert.Equal(t, 4, degree)
	assert.False(t, eb.Contains(4))

	assert.Equal(t, "F# minor", GetKeyName(6, KeyModeMinor))
	assert.Equal(t, "Ab major", GetKeyName(8, KeyModeMajor))
}

func TestFitCost(t *testing.T) {
	assert.Equal(t, 0.0, FitCost("Dm7", "C"))
	assert.Equal(t, 2.0, FitCost("Bb7", "C"))
	assert.Equal(t, 5.0, FitCost("Db7", "C"))
	assert.Equal(t, 5.0, FitCost("N.C.", "C"))

	assert.LessOrEqual(t, FitCost("Dm7", "C"), FitCost("Dm7", "F"))
	assert.LessOrEqual(t, FitCost("G7", "C"), FitCost("G7", "F"))
	assert.LessOrEqual(t, FitCost("G7", "C"), FitCost("G7", "Eb"))
}

func TestTransitionCost(t *testing.T) {
	for index := range NumKeys {
		label := KeyAt(index).Label()
		assert.Equal(t, 0.0, TransitionCost(label, label), label)
	}

	assert.Greater(t, TransitionCost("C", "Db"), TransitionCost("C", "G"))
	assert.Less(t, TransitionCost("C", "Am"), TransitionCost("C", "B"))

	assert.Equal(t, 1.0, TransitionCost("C", "G"))
	assert.Equal(t, 5.0, TransitionCost("C", "Db"))
	assert.Equal(t, 2.5, TransitionCost("C", "Am"))
	assert.Equal(t, 2.5, TransitionCost("Am", "C"))
	assert.Equal(t, 6.0, TransitionCost("C", "F#"))
}

func slotsOf(symbols ...string) []Slot {
	slots := make([]Slot, len(symbols))
	for i, symbol := range symbols {
		slots[i] = Slot{Bar: i, Symbol: symbol}
	}
	return slots
}

func TestSegmentIIVI(t *testing.T) {
	segmenter := NewSegmenter(DefaultSegmentationParams())
	result := segmenter.Segment(slotsOf("Dm7", "G7", "Cmaj7"))

	require.Len(t, result.Path, 3)
	assert.Equal(t, []string{"C", "C", "C"}, result.Path)
	assert.Equal(t, 0.0, result.Cost)
	require.Len(t, result.Segments, 1)
	assert.Equal(t, Segment{StartBar: 0, EndBar: 2, StartSlot: 0, EndSlot: 2, Key: "C"}, result.Segments[0])
}

func TestSegmentEmpty(t *testing.T) {
	result := NewSegmenter(DefaultSegmentationParams()).Segment(nil)
	assert.NotNil(t, result.Path)
	assert.NotNil(t, result.Segments)
	assert.Empty(t, result.Path)
	assert.Empty(t, result.Segments)
	assert.Equal(t, 0.0, result.Cost)
}

func TestSegmentsPartitionSlots(t *testing.T) {
	slots := slotsOf(
		"C", "F", "G", "C", "C", "F", "G", "C",
		"F#", "B", "C#", "F#", "F#", "B", "C#", "F#",
	)
	result := NewSegmenter(DefaultSegmentationParams()).Segment(slots)
	require.Len(t, result.Path, len(slots))
	assert.NotEqual(t, result.Path[0], result.Path[len(slots)-1])

	next := 0
	for i, seg := range result.Segments {
		assert.Equal(t, next, seg.StartSlot, "segment %d", i)
		assert.LessOrEqual(t, seg.StartSlot, seg.EndSlot)
		for x := seg.StartSlot; x <= seg.EndSlot; x++ {
			assert.Equal(t, seg.Key, result.Path[x])
		}
		if i > 0 {
			assert.NotEqual(t, result.Segments[i-1].Key, seg.Key)
		}
		next = seg.EndSlot + 1
	}
	assert.Equal(t, len(slots), next)
}

func TestSegmentSharedBars(t *testing.T) {
	slots := []Slot{
		{Bar: 0, Symbol: "Dm7"},
		{Bar: 0, Symbol: "G7"},
		{Bar: 1, Symbol: "Cmaj7"},
		{Bar: 3, Symbol: "Cmaj7"},
	}
	result := NewSegmenter(DefaultSegmentationParams()).Segment(slots)
	require.Len(t, result.Segments, 1)
	assert.Equal(t, 0, result.Segments[0].StartBar)
	assert.Equal(t, 3, result.Segments[0].EndBar)
	assert.Equal(t, 3, result.Segments[0].EndSlot)
}

func TestSegmentDeterministic(t *testing.T) {
	slots := slotsOf("Cmaj7", "A7", "Dm7", "G7", "Em7", "A7", "Dm7", "G7", "Ebmaj7", "Ab7")
	segmenter := NewSegmenter(DefaultSegmentationParams())
	first := segmenter.Segment(slots)
	for range 5 {
		assert.Equal(t, first, segmenter.Segment(slots))
	}
}

func TestSentinelSegments(t *testing.T) {
	t.Run("constant structure", func(t *testing.T) {
		result := NewSegmenter(DefaultSegmentationParams()).Segment(slotsOf("Cmaj7", "Dmaj7", "Emaj7"))
		assert.Equal(t, []string{Constant, Constant, Constant}, result.Path)
		require.Len(t, result.Segments, 1)
		assert.Equal(t, Constant, result.Segments[0].Key)
	})

	t.Run("fifth motion is not constant structure", func(t *testing.T) {
		result := NewSegmenter(DefaultSegmentationParams()).Segment(slotsOf("E7", "A7", "D7", "G7"))
		for _, label := range result.Path {
			assert.False(t, IsSentinel(label), label)
		}
	})

	t.Run("chromatic run", func(t *testing.T) {
		result := NewSegmenter(DefaultSegmentationParams()).Segment(slotsOf("C", "F", "G", "N.C.", "N.C.", "N.C."))
		assert.Equal(t, []string{"C", "C", "C", Chromatic, Chromatic, Chromatic}, result.Path)
		require.Len(t, result.Segments, 2)
		assert.Equal(t, Chromatic, result.Segments[1].Key)
		assert.Equal(t, 3, result.Segments[1].StartSlot)
	})

	t.Run("short runs stay keyed", func(t *testing.T) {
		result := NewSegmenter(DefaultSegmentationParams()).Segment(slotsOf("C", "F", "N.C.", "N.C.", "G"))
		for _, label := range result.Path {
			assert.False(t, IsSentinel(label), label)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		params := DefaultSegmentationParams()
		params.DetectSentinels = false
		result := NewSegmenter(params).Segment(slotsOf("Cmaj7", "Dmaj7", "Emaj7"))
		assert.Equal(t, []string{"C", "C", "C"}, result.Path)
	})
}

func TestEstimateFromChords(t *testing.T) {
	estimator := NewKeyEstimator()

	result, ok := estimator.EstimateFromChords([]string{"C", "F", "G7", "C", "Am", "Dm7", "G7", "Cmaj7"})
	require.True(t, ok)
	assert.Equal(t, "C", result.Label)
	assert.Equal(t, KeyModeMajor, result.Mode)
	assert.Len(t, result.Candidates, 5)
	assert.Len(t, result.CorrelationScores, NumKeys)
	assert.Greater(t, result.Clarity, 0.0)

	result, ok = estimator.EstimateFromChords([]string{"Am", "Dm", "E7", "Am", "F", "Dm", "E7", "Am"})
	require.True(t, ok)
	assert.Equal(t, "Am", result.Label)
	assert.Equal(t, "A minor", result.KeyName)

	_, ok = estimator.EstimateFromChords([]string{"N.C.", ""})
	assert.False(t, ok)
}
