// Package textops normalizes input text before classification: Unicode
// cleanup, typographic character replacement, whitespace collapsing, and
// conservative spelling correction that leaves names and acronyms alone.
package textops

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// zeroWidth covers the invisible characters that survive copy-paste from
// web pages and break exact-match cache keys.
var zeroWidth = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x200b, Hi: 0x200d, Stride: 1}, // zero-width space/joiners
		{Lo: 0x2060, Hi: 0x2060, Stride: 1}, // word joiner
		{Lo: 0xfeff, Hi: 0xfeff, Stride: 1}, // BOM
	},
}

var unicodeCleaner = transform.Chain(runes.Remove(runes.In(zeroWidth)), norm.NFC)

var typographic = strings.NewReplacer(
	"“", `"`, "”", `"`,
	"‘", "'", "’", "'",
	"–", "-", "—", "-",
	" ", " ",
)

// preserveWords are terms that must never be "corrected": political figures,
// institutions, and abbreviations common in news text.
var preserveWords = map[string]struct{}{
	"biden": {}, "trump": {}, "obama": {}, "clinton": {}, "harris": {},
	"pence": {}, "pelosi": {}, "mcconnell": {}, "putin": {}, "zelensky": {},
	"xi": {}, "modi": {}, "macron": {}, "trudeau": {}, "netanyahu": {},

	"bipartisan": {}, "democrat": {}, "republican": {}, "senate": {},
	"congress": {}, "parliament": {}, "legislation": {}, "referendum": {},
	"caucus": {}, "filibuster": {},

	"covid": {}, "pandemic": {}, "vaccine": {}, "brexit": {}, "nato": {},
	"un": {}, "eu": {}, "gdp": {}, "cryptocurrency": {}, "bitcoin": {},
	"ai": {}, "tech": {}, "startup": {},

	"usa": {}, "uk": {}, "uae": {}, "ceo": {}, "cfo": {}, "fbi": {},
	"cia": {}, "nasa": {}, "who": {},
}

// corrections maps frequent lowercase typos to their fixes. Values must be
// valid words absent from the key set, so normalization is idempotent.
var corrections = map[string]string{
	"teh":         "the",
	"wich":        "which",
	"thier":       "their",
	"recieve":     "receive",
	"beleive":     "believe",
	"seperate":    "separate",
	"definately":  "definitely",
	"occured":     "occurred",
	"untill":      "until",
	"accross":     "across",
	"adress":      "address",
	"goverment":   "government",
	"goverments":  "governments",
	"parliment":   "parliament",
	"presidnet":   "president",
	"offical":     "official",
	"officals":    "officials",
	"anounced":    "announced",
	"campain":     "campaign",
	"independant": "independent",
	"tommorow":    "tomorrow",
	"yestarday":   "yesterday",
	"enviroment":  "environment",
	"breakthough": "breakthrough",
}

// Normalizer cleans and spell-corrects text. The zero value is not usable;
// construct with NewNormalizer.
type Normalizer struct {
	preserve map[string]struct{}
	fixes    map[string]string
}

// NewNormalizer returns a Normalizer with the built-in preserve list and
// correction table.
func NewNormalizer() *Normalizer {
	return &Normalizer{preserve: preserveWords, fixes: corrections}
}

// Normalize returns the cleaned text: NFC-composed, zero-width characters
// stripped, curly quotes and long dashes replaced, whitespace collapsed,
// known typos fixed. Normalizing already-normalized text is a no-op.
func (n *Normalizer) Normalize(text string) string {
	cleaned, _, err := transform.String(unicodeCleaner, text)
	if err != nil {
		cleaned = text
	}
	cleaned = typographic.Replace(cleaned)

	fields := strings.Fields(cleaned)
	for i, tok := range fields {
		fields[i] = n.correctToken(tok)
	}
	return strings.Join(fields, " ")
}

// correctToken fixes the alphabetic core of one whitespace-delimited token,
// leaving surrounding punctuation in place. Tokens containing any uppercase
// letter are treated as names or acronyms and returned unchanged.
func (n *Normalizer) correctToken(tok string) string {
	start, end := wordBounds(tok)
	if start >= end {
		return tok
	}
	core := tok[start:end]
	if utf8.RuneCountInString(core) <= 2 {
		return tok
	}

	lower := strings.ToLower(core)
	if _, ok := n.preserve[lower]; ok {
		return tok
	}
	if core != lower {
		return tok
	}
	fixed, ok := n.fixes[lower]
	if !ok {
		return tok
	}
	return tok[:start] + fixed + tok[end:]
}

// wordBounds returns the byte range of the first contiguous letter/digit
// run in tok, skipping leading punctuation.
func wordBounds(tok string) (int, int) {
	start := -1
	for i, r := range tok {
		isWord := unicode.IsLetter(r) || unicode.IsDigit(r)
		if isWord && start < 0 {
			start = i
		}
		if !isWord && start >= 0 {
			return start, i
		}
	}
	if start < 0 {
		return 0, 0
	}
	return start, len(tok)
}
