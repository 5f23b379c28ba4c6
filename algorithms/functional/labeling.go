package functional

import (
	"strings"

	"github.com/pawelknorps/chord-lab-sub001/algorithms/chord"
	"github.com/pawelknorps/chord-lab-sub001/algorithms/chroma"
	"github.com/pawelknorps/chord-lab-sub001/algorithms/tonal"
	"github.com/pawelknorps/chord-lab-sub001/logging"
)

// ConceptType names a harmonic idiom spanning one or more chords.
// The zero value means no concept.
type ConceptType string

const (
	ConceptNone         ConceptType = ""
	MajorIIVI           ConceptType = "MajorII-V-I"
	MinorIIVi           ConceptType = "MinorII-V-i"
	SecondaryDominant   ConceptType = "SecondaryDominant"
	TritoneSubstitution ConceptType = "TritoneSubstitution"
	ColtraneChanges     ConceptType = "ColtraneChanges"
)

// KeyShiftLabel marks slots inside chromatic or constant-structure segments
const KeyShiftLabel = "Key shift"

// Result is the functional label of one chord slot
type Result struct {
	ChordIndex   int         `json:"chord_index"`
	BarIndex     int         `json:"bar_index"`
	Symbol       string      `json:"symbol"`
	Roman        string      `json:"roman"`
	Concept      ConceptType `json:"concept,omitempty"`
	Key          string      `json:"key"`
	SegmentLabel string      `json:"segment_label,omitempty"`
}

// Params controls the optional idiom detectors
type Params struct {
	DetectSecondaryDominants bool `json:"detect_secondary_dominants"`
	DetectColtrane           bool `json:"detect_coltrane"`
}

// DefaultParams enables every detector
func DefaultParams() Params {
	return Params{
		DetectSecondaryDominants: true,
		DetectColtrane:           true,
	}
}

// Labeler assigns Roman numerals and concept tags to chord slots
type Labeler struct {
	params Params
	logger logging.Logger
}

// NewLabeler creates a labeler
func NewLabeler(params Params) *Labeler {
	return &Labeler{
		params: params,
		logger: logging.WithFields(logging.Fields{"component": "labeling"}),
	}
}

// SetLogger replaces the labeler's logger
func (l *Labeler) SetLogger(logger logging.Logger) {
	if logger != nil {
		l.logger = logger
	}
}

// window is the immutable view of a chart a single Label call works on
type window struct {
	slots  []tonal.Slot
	chords []*chord.DNA // nil where the symbol could not be parsed
}

func (w window) at(i int) *chord.DNA {
	if i < 0 || i >= len(w.chords) {
		return nil
	}
	return w.chords[i]
}

// dominant reports a plain dominant seventh at slot i
func (w window) dominant(i int) bool {
	c := w.at(i)
	return c != nil && c.IsDominantSeventh()
}

func (w window) minorSeventh(i int) bool {
	c := w.at(i)
	return c != nil && c.IsMinorSeventh()
}

func (w window) majorSeventh(i int) bool {
	c := w.at(i)
	return c != nil && c.IsMajorSeventh()
}

// rises reports whether the root moves up by the interval from slot a to slot b
func (w window) rises(a, b, interval int) bool {
	ca, cb := w.at(a), w.at(b)
	return ca != nil && cb != nil && chroma.Interval(ca.RootClass, cb.RootClass) == interval
}

// Label produces one result per slot. Slots not covered by any segment are
// read in fallbackKey, or C when that is empty or unknown.
func (l *Labeler) Label(slots []tonal.Slot, segments []tonal.Segment, fallbackKey string) []Result {
	results := make([]Result, len(slots))
	if len(slots) == 0 {
		return results
	}

	w := window{slots: slots, chords: make([]*chord.DNA, len(slots))}
	for i, slot := range slots {
		if dna, err := chord.Decompose(slot.Symbol); err == nil {
			w.chords[i] = &dna
		}
	}

	fallback, ok := tonal.ParseKey(fallbackKey)
	if !ok {
		fallback = tonal.Key{Tonic: 0, Mode: tonal.KeyModeMajor}
	}
	labels := slotKeys(slots, segments, fallback.Label())

	concepts := 0
	for i, slot := range slots {
		results[i] = l.labelSlot(w, i, labels[i], fallback)
		results[i].ChordIndex = i
		results[i].BarIndex = slot.Bar
		results[i].Symbol = slot.Symbol
		if results[i].Concept != ConceptNone {
			concepts++
		}
	}

	l.logger.Debug("Labeled chart", logging.Fields{
		"slots":    len(slots),
		"concepts": concepts,
	})
	return results
}

func (l *Labeler) labelSlot(w window, i int, label string, fallback tonal.Key) Result {
	if tonal.IsSentinel(label) {
		return Result{Roman: bareRoot(w, i), Key: label, SegmentLabel: KeyShiftLabel}
	}

	key, ok := tonal.ParseKey(label)
	if !ok {
		key, label = fallback, fallback.Label()
	}
	result := Result{Key: label, Roman: degreeRoman(w, i, key)}

	switch {
	case w.dominant(i) && w.rises(i, i+1, 11):
		result.Roman = "subV7"
		result.Concept = TritoneSubstitution
	case l.params.DetectColtrane && isColtrane(w, i):
		result.Concept = ColtraneChanges
	case isMajorIIVI(w, i):
		result.Concept = MajorIIVI
	case key.Mode == tonal.KeyModeMinor && w.at(i) != nil && w.at(i).IsHalfDiminished() && i+2 < len(w.slots):
		result.Roman = "iiø7"
		result.Concept = MinorIIVi
	case l.params.DetectSecondaryDominants:
		if roman, ok := secondaryDominant(w, i, key); ok {
			result.Roman = roman
			result.Concept = SecondaryDominant
		}
	}
	return result
}

// isMajorIIVI checks the complete ii-V-I pattern from the ii, V or I vantage
func isMajorIIVI(w window, i int) bool {
	fromII := w.minorSeventh(i) && w.dominant(i+1) && w.rises(i, i+1, 5) && w.majorSeventh(i+2)
	fromV := w.dominant(i) && w.minorSeventh(i-1) && w.rises(i-1, i, 5) && w.majorSeventh(i+1)
	fromI := w.majorSeventh(i) && w.minorSeventh(i-2) && w.dominant(i-1) && w.rises(i-2, i-1, 5)
	return fromII || fromV || fromI
}

// isColtrane detects a dominant resolving up a fourth to a major seventh that
// sits a major third below the major seventh preceding the dominant
func isColtrane(w window, i int) bool {
	fromV := w.dominant(i) && w.majorSeventh(i+1) && w.rises(i, i+1, 5) &&
		w.majorSeventh(i-1) && w.rises(i+1, i-1, 4)
	fromI := w.majorSeventh(i) && w.dominant(i-1) && w.rises(i-1, i, 5) &&
		w.majorSeventh(i-2) && w.rises(i, i-2, 4)
	return fromV || fromI
}

// secondaryDominant labels a dominant resolving down a fifth to a diatonic
// degree other than the tonic
func secondaryDominant(w window, i int, key tonal.Key) (string, bool) {
	if !w.dominant(i) || !w.rises(i, i+1, 5) {
		return "", false
	}
	target := w.at(i + 1)
	degree, ok := key.Degree(target.RootClass)
	if !ok || degree == 0 {
		return "", false
	}
	// no V7/vii in major
	if degree == 6 && key.Mode == tonal.KeyModeMajor {
		return "", false
	}
	roman := numeral(degree, key)
	if target.Core.Third == chord.ThirdMinor {
		roman = strings.ToLower(roman)
	}
	return "V7/" + roman, true
}

var romanNumerals = [7]string{"I", "II", "III", "IV", "V", "VI", "VII"}

// numeral returns the upper-case numeral of a degree, flattened for the
// lowered third, sixth and seventh of natural minor
func numeral(degree int, key tonal.Key) string {
	if key.Mode == tonal.KeyModeMinor && (degree == 2 || degree == 5 || degree == 6) {
		return "b" + romanNumerals[degree]
	}
	return romanNumerals[degree]
}

// degreeRoman is the quality-aware scale-degree label, or the bare root when
// the chord is not diatonic
func degreeRoman(w window, i int, key tonal.Key) string {
	c := w.at(i)
	if c == nil {
		return bareRoot(w, i)
	}
	degree, ok := key.Degree(c.RootClass)
	if !ok {
		return c.Root
	}
	upper := numeral(degree, key)
	lower := strings.ToLower(upper)
	switch {
	case c.IsMinorSeventh():
		return lower + "7"
	case c.IsDominantSeventh():
		return upper + "7"
	case c.IsMajorSeventh():
		return upper + "maj7"
	case c.IsHalfDiminished():
		return lower + "ø7"
	case c.IsDiminishedSeventh():
		return lower + "°7"
	case c.Core.Third == chord.ThirdMinor:
		return lower
	}
	return upper
}

// bareRoot returns the chord root, or the first two characters of the symbol
func bareRoot(w window, i int) string {
	if c := w.at(i); c != nil {
		return c.Root
	}
	symbol := []rune(strings.TrimSpace(w.slots[i].Symbol))
	if len(symbol) > 2 {
		symbol = symbol[:2]
	}
	return string(symbol)
}

// slotKeys resolves the segment label covering every slot. Segments carrying
// slot indexes are mapped by slot, otherwise by bar.
func slotKeys(slots []tonal.Slot, segments []tonal.Segment, fallback string) []string {
	labels := make([]string, len(slots))
	for i := range labels {
		labels[i] = fallback
	}
	if len(segments) == 0 {
		return labels
	}

	if last := segments[len(segments)-1]; last.EndSlot == len(slots)-1 {
		for _, seg := range segments {
			for x := max(seg.StartSlot, 0); x <= seg.EndSlot && x < len(slots); x++ {
				labels[x] = seg.Key
			}
		}
		return labels
	}

	for i, slot := range slots {
		for _, seg := range segments {
			if slot.Bar >= seg.StartBar && slot.Bar <= seg.EndBar {
				labels[i] = seg.Key
				break
			}
		}
	}
	return labels
}
