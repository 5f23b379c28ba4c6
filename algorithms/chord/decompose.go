package chord

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/pawelknorps/chord-lab-sub001/algorithms/chroma"
)

// ErrUnparsableSymbol is returned when a chord symbol does not start with a note letter
var ErrUnparsableSymbol = errors.New("unparsable chord symbol")

type toneRole int

const (
	roleRoot toneRole = iota
	roleThird
	roleFifth
	roleSeventh
	roleExtension
	roleAlteration
)

type tone struct {
	role   toneRole
	degree string
	sharp  bool
}

// thirdRule and fifthRule are evaluated top to bottom, first match wins
type thirdRule struct {
	matches         func(q string) bool
	third           Third
	fullyDiminished bool
}

type fifthRule struct {
	matches func(q string) bool
	fifth   Fifth
}

var thirdRules = []thirdRule{
	{matches: hasSus4, third: ThirdSus4},
	{matches: hasSus2, third: ThirdSus2},
	{matches: hasDiminishedShorthand, third: ThirdMinor, fullyDiminished: true},
	{matches: hasMinorMarker, third: ThirdMinor},
}

var fifthRules = []fifthRule{
	{matches: hasAugmentedMarker, fifth: FifthAugmented},
	{matches: hasDiminishedFifthMarker, fifth: FifthDiminished},
}

var thirdTones = map[Third]struct {
	interval int
	degree   string
}{
	ThirdMajor: {4, "3M"},
	ThirdMinor: {3, "3m"},
	ThirdSus4:  {5, "4"},
	ThirdSus2:  {2, "2"},
}

var fifthTones = map[Fifth]struct {
	interval int
	degree   string
}{
	FifthPerfect:    {7, "5"},
	FifthDiminished: {6, "5d"},
	FifthAugmented:  {8, "5A"},
}

// alterations in scan order with their interval and degree name
var alterations = []struct {
	token    string
	interval int
	degree   string
}{
	{"b9", 1, "9b"},
	{"#9", 3, "9#"},
	{"#11", 6, "11#"},
	{"b13", 8, "13b"},
}

var addTones = map[string]struct {
	interval int
	degree   string
}{
	"2": {2, "9"}, "9": {2, "9"},
	"4": {5, "11"}, "11": {5, "11"},
	"6": {9, "6"}, "13": {9, "13"},
}

// Decompose parses a chord symbol into its root, triad, seventh and tension
// layers. Quality text that matches no rule yields a plain major triad.
func Decompose(symbol string) (DNA, error) {
	cleaned := normalizeSymbol(symbol)
	root, rootClass, rest, ok := parseRoot(cleaned)
	if !ok {
		return DNA{}, fmt.Errorf("%w: %q", ErrUnparsableSymbol, symbol)
	}

	body, bass := splitBass(stripAnnotations(rest))
	q := canonicalQuality(body)

	core := Core{Third: ThirdMajor, Fifth: FifthPerfect}
	for _, rule := range thirdRules {
		if rule.matches(q) {
			core.Third = rule.third
			core.FullyDiminished = rule.fullyDiminished
			break
		}
	}
	for _, rule := range fifthRules {
		if rule.matches(q) {
			core.Fifth = rule.fifth
			break
		}
	}

	b := newToneSet()
	b.add(0, tone{role: roleRoot, degree: "1"})
	third := thirdTones[core.Third]
	b.add(third.interval, tone{role: roleThird, degree: third.degree})
	fifth := fifthTones[core.Fifth]
	b.add(fifth.interval, tone{role: roleFifth, degree: fifth.degree})

	ext := Extension{}
	switch {
	case core.FullyDiminished:
		b.add(9, tone{role: roleSeventh, degree: "7d"})
		ext.HasSeventh = true
	case hasMajorSeventh(q):
		// also covers minor-major sevenths such as "Cm/maj7"
		b.add(11, tone{role: roleSeventh, degree: "7M"})
		ext.HasSeventh = true
	}

	residue := stripTensionTokens(q)
	runs := digitRuns(residue)
	sixth := slices.Contains(runs, "6") || slices.Contains(runs, "69")
	impliesSeventh := strings.Contains(q, "ø")
	for _, run := range runs {
		switch run {
		case "7":
			impliesSeventh = true
		case "9":
			impliesSeventh = impliesSeventh || !sixth
			b.add(2, tone{role: roleExtension, degree: "9"})
		case "11":
			impliesSeventh = true
			b.add(5, tone{role: roleExtension, degree: "11"})
		case "13":
			impliesSeventh = true
			b.add(9, tone{role: roleExtension, degree: "13"})
		case "6":
			b.add(9, tone{role: roleExtension, degree: "6"})
		case "69":
			b.add(9, tone{role: roleExtension, degree: "6"})
			b.add(2, tone{role: roleExtension, degree: "9"})
		}
	}
	if impliesSeventh && !ext.HasSeventh {
		b.add(10, tone{role: roleSeventh, degree: "7m"})
		ext.HasSeventh = true
	}
	for _, num := range addedTones(q) {
		if add, ok := addTones[num]; ok {
			b.add(add.interval, tone{role: roleExtension, degree: add.degree})
		}
	}

	altered := strings.Contains(q, "alt")
	for _, alt := range alterations {
		if altered || strings.Contains(q, alt.token) {
			b.add(alt.interval, tone{role: roleAlteration, degree: alt.degree, sharp: alt.token[0] == '#'})
			ext.AlterationCount++
		}
	}

	context := root
	if core.Third == ThirdMinor {
		context += "m"
	}

	dna := DNA{
		Symbol:    symbol,
		Root:      root,
		RootClass: rootClass,
		Quality:   body,
		Bass:      bass,
		Core:      core,
		Extension: ext,
	}
	dna.Intervals = b.intervals()
	dna.Degrees = make([]string, len(dna.Intervals))
	dna.Notes = make([]string, len(dna.Intervals))
	for i, iv := range dna.Intervals {
		t := b.tones[iv]
		dna.Degrees[i] = t.degree
		pc := chroma.Wrap(rootClass + iv)
		switch {
		case t.role == roleRoot:
			dna.Notes[i] = root
		case t.role == roleAlteration && t.sharp:
			dna.Notes[i] = chroma.SharpNames[pc]
		case t.role == roleAlteration:
			dna.Notes[i] = chroma.FlatNames[pc]
		default:
			dna.Notes[i] = Spell(pc, context)
		}
	}
	return dna, nil
}

// RootOf returns the root pitch class of a symbol, or false when it cannot be parsed
func RootOf(symbol string) (int, bool) {
	_, pc, _, ok := parseRoot(normalizeSymbol(symbol))
	return pc, ok
}

// toneSet keeps the first tone registered for each interval
type toneSet struct {
	tones map[int]tone
}

func newToneSet() *toneSet {
	return &toneSet{tones: make(map[int]tone)}
}

func (s *toneSet) add(interval int, t tone) {
	interval = chroma.Wrap(interval)
	if _, exists := s.tones[interval]; !exists {
		s.tones[interval] = t
	}
}

func (s *toneSet) intervals() []int {
	out := make([]int, 0, len(s.tones))
	for iv := range s.tones {
		out = append(out, iv)
	}
	slices.Sort(out)
	return out
}

func normalizeSymbol(symbol string) string {
	s := strings.TrimSpace(norm.NFC.String(symbol))
	return strings.NewReplacer("♯", "#", "♭", "b", "Δ", "∆", "°", "o").Replace(s)
}

// parseRoot reads a note letter and at most one accidental
func parseRoot(s string) (root string, pc int, rest string, ok bool) {
	if s == "" || s[0] < 'A' || s[0] > 'G' {
		return "", 0, "", false
	}
	n := 1
	if len(s) > 1 && (s[1] == '#' || s[1] == 'b') {
		n = 2
	}
	pc, _, ok = chroma.ParseNote(s[:n])
	return s[:n], pc, s[n:], ok
}

// stripAnnotations drops bracketed comments and unwraps parentheses that
// carry chord information, e.g. "7(b9)" -> "7b9" but "7(opt)" -> "7".
func stripAnnotations(s string) string {
	var out strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			if end := strings.IndexByte(s[i:], ']'); end >= 0 {
				i += end
				continue
			}
		case '(':
			if end := strings.IndexByte(s[i:], ')'); end >= 0 {
				inner := dropOmissions(s[i+1 : i+end])
				if strings.ContainsAny(inner, "0123456789") || strings.Contains(inner, "alt") || strings.Contains(inner, "maj") {
					out.WriteString(inner)
				}
				i += end
				continue
			}
		}
		out.WriteByte(s[i])
	}
	return strings.TrimSpace(dropOmissions(out.String()))
}

// dropOmissions removes "no5" and "omit3" style tokens. Omitted tones are
// not subtracted; the letters must not be read as quality markers.
func dropOmissions(s string) string {
	for _, marker := range []string{"omit", "no"} {
		var out strings.Builder
		for {
			idx := strings.Index(s, marker)
			if idx < 0 {
				break
			}
			end := idx + len(marker)
			for end < len(s) && s[end] == ' ' {
				end++
			}
			digits := end
			for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
				digits++
			}
			if digits == end {
				out.WriteString(s[:idx+len(marker)])
				s = s[idx+len(marker):]
				continue
			}
			out.WriteString(s[:idx])
			s = s[digits:]
		}
		out.WriteString(s)
		s = out.String()
	}
	return s
}

// splitBass separates a slash bass note; "6/9" and "m/maj7" are not basses
func splitBass(s string) (body, bass string) {
	idx := strings.LastIndexByte(s, '/')
	if idx < 0 || idx+1 >= len(s) || s[idx+1] < 'A' || s[idx+1] > 'G' {
		return s, ""
	}
	return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+1:])
}

func canonicalQuality(body string) string {
	q := strings.NewReplacer("major", "maj", "Major", "maj", "minor", "min").Replace(body)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, q)
}

func containsAny(s string, markers ...string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// withoutWords removes words whose letters would read as quality markers
func withoutWords(q string, words ...string) string {
	for _, w := range words {
		q = strings.ReplaceAll(q, w, "")
	}
	return q
}

func hasSus4(q string) bool {
	return strings.Contains(q, "sus4") || (strings.Contains(q, "sus") && !strings.Contains(q, "sus2"))
}

func hasSus2(q string) bool {
	return strings.Contains(q, "sus2")
}

func hasDiminishedShorthand(q string) bool {
	s := withoutWords(q, "dom")
	return containsAny(s, "o7", "07", "dim7", "o", "0")
}

func hasMinorMarker(q string) bool {
	s := withoutWords(q, "maj", "Maj", "dom")
	return containsAny(s, "min", "m", "-", "ø")
}

func hasAugmentedMarker(q string) bool {
	return containsAny(q, "+", "#5", "aug")
}

func hasDiminishedFifthMarker(q string) bool {
	s := withoutWords(q, "dom")
	return containsAny(s, "b5", "dim", "ø", "o", "07")
}

var seventhRuns = map[string]bool{"7": true, "9": true, "11": true, "13": true}

func hasMajorSeventh(q string) bool {
	if strings.ContainsAny(q, "^∆") {
		return true
	}
	for _, prefix := range []string{"maj", "Maj", "MA", "M"} {
		for i := 0; i <= len(q)-len(prefix); i++ {
			if strings.HasPrefix(q[i:], prefix) && seventhRuns[leadingDigits(q[i+len(prefix):])] {
				return true
			}
		}
	}
	return false
}

// stripTensionTokens removes alterations, added tones and suspensions so the
// remaining digits describe only the seventh/extension layer
func stripTensionTokens(q string) string {
	s := q
	for _, alt := range alterations {
		s = strings.ReplaceAll(s, alt.token, "")
	}
	s = withoutWords(s, "b5", "#5", "alt", "sus4", "sus2", "o7", "07", "dim7")
	for {
		i := strings.Index(s, "add")
		if i < 0 {
			break
		}
		num := leadingDigits(s[i+3:])
		s = s[:i] + s[i+3+len(num):]
	}
	return s
}

func addedTones(q string) []string {
	var nums []string
	for rest := q; ; {
		i := strings.Index(rest, "add")
		if i < 0 {
			return nums
		}
		rest = rest[i+3:]
		if num := leadingDigits(rest); num != "" {
			nums = append(nums, num)
		}
	}
}

func leadingDigits(s string) string {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return s[:n]
}

func digitRuns(s string) []string {
	var runs []string
	for i := 0; i < len(s); {
		if s[i] < '0' || s[i] > '9' {
			i++
			continue
		}
		run := leadingDigits(s[i:])
		runs = append(runs, run)
		i += len(run)
	}
	return runs
}
