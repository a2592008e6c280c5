// Package textfilter softens profanity in generated narrative for family-friendly ratings.
package textfilter

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/white-rabbit/pkg/narrative"
)

// replacements maps each filtered word to its family-friendly alternative.
var replacements = map[string]string{
	"fuck":         "fudge",
	"shit":         "shoot",
	"damn":         "dang",
	"hell":         "heck",
	"ass":          "butt",
	"bitch":        "jerk",
	"bastard":      "jerk",
	"crap":         "crud",
	"piss":         "ticked",
	"cock":         "[censored]",
	"dick":         "jerk",
	"pussy":        "[censored]",
	"tits":         "[censored]",
	"boobs":        "[censored]",
	"whore":        "[censored]",
	"slut":         "[censored]",
	"fag":          "[censored]",
	"retard":       "[censored]",
	"nigger":       "[censored]",
	"nigga":        "[censored]",
	"spic":         "[censored]",
	"chink":        "[censored]",
	"kike":         "[censored]",
	"motherfucker": "mother-trucker",
	"goddamn":      "gosh-dang",
	"jesus christ": "jeez",
	"christ":       "crikey",
	"asshole":      "jerk",
	"dumbass":      "dummy",
	"jackass":      "jerk",
	"smartass":     "smarty",
	"badass":       "tough",
	"bullshit":     "baloney",
	"horseshit":    "nonsense",
	"dipshit":      "dummy",
	"shithead":     "jerk",
	"dickhead":     "jerk",
	"prick":        "jerk",
	"douche":       "jerk",
	"douchebag":    "jerk",
}

// ProfanityFilter replaces filtered words, and their plurals, on whole-word matches only.
type ProfanityFilter struct {
	re    *regexp.Regexp
	title cases.Caser
}

func NewProfanityFilter() *ProfanityFilter {
	words := make([]string, 0, len(replacements))
	for w := range replacements {
		words = append(words, regexp.QuoteMeta(w))
	}
	// Longest first so "jesus christ" wins over "christ".
	sort.Slice(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})

	return &ProfanityFilter{
		re:    regexp.MustCompile(`(?i)\b(` + strings.Join(words, "|") + `)(s?)\b`),
		title: cases.Title(language.English),
	}
}

// FilterText replaces profanity with alternatives in the case of the original.
func (pf *ProfanityFilter) FilterText(text string) string {
	return pf.re.ReplaceAllStringFunc(text, func(match string) string {
		m := pf.re.FindStringSubmatch(match)
		word, plural := m[1], m[2]
		out := pf.matchCase(word, replacements[strings.ToLower(word)])
		if plural != "" && !strings.HasPrefix(out, "[") {
			out += plural
		}
		return out
	})
}

// ContainsProfanity reports whether FilterText would change text.
func (pf *ProfanityFilter) ContainsProfanity(text string) bool {
	return pf.re.MatchString(text)
}

// FilterRecord cleans every player-visible field of a stage record in place and
// reports whether any field changed.
func (pf *ProfanityFilter) FilterRecord(rec narrative.Record) bool {
	changed := false
	for _, field := range recordFields(rec) {
		if pf.ContainsProfanity(*field) {
			*field = pf.FilterText(*field)
			changed = true
		}
	}
	return changed
}

func recordFields(rec narrative.Record) []*string {
	var fields []*string
	var choices []narrative.Choice
	switch r := rec.(type) {
	case *narrative.InitialRecord:
		fields = append(fields, &r.Situation)
		choices = r.Choices
	case *narrative.RoundRecord:
		fields = append(fields, &r.ConfirmingSentence, &r.Situation)
		choices = r.Choices
	case *narrative.FinalRecord:
		fields = append(fields, &r.ConfirmingSentence, &r.Situation)
	}
	for i := range choices {
		fields = append(fields, &choices[i].ChoiceDescription, &choices[i].ConfirmingSentence)
	}
	return fields
}

func (pf *ProfanityFilter) matchCase(original, replacement string) string {
	switch original {
	case strings.ToUpper(original):
		return strings.ToUpper(replacement)
	case strings.ToLower(original):
		return replacement
	case pf.title.String(strings.ToLower(original)):
		return pf.title.String(replacement)
	}

	// Mixed case: copy the case rune by rune, lower case past the original's length.
	orig := []rune(original)
	out := []rune(replacement)
	for i, r := range out {
		if i < len(orig) && unicode.IsUpper(orig[i]) {
			out[i] = unicode.ToUpper(r)
		} else {
			out[i] = unicode.ToLower(r)
		}
	}
	return string(out)
}

// ShouldFilterContent reports whether a content rating requires filtering.
func ShouldFilterContent(rating string) bool {
	switch strings.ToUpper(strings.TrimSpace(rating)) {
	case "G", "PG", "PG13", "PG-13":
		return true
	default:
		return false
	}
}
