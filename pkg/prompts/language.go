package prompts

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// DefaultLanguage is used when a request carries no language tag.
const DefaultLanguage = "en"

// ErrInvalidLanguage is returned for tags that are not well-formed BCP 47.
var ErrInvalidLanguage = errors.New("invalid language tag")

// LanguageName returns the English display name for a BCP 47 tag, e.g. "de-AT"
// becomes "Austrian German".
func LanguageName(tag string) (string, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		tag = DefaultLanguage
	}
	t, err := language.Parse(tag)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidLanguage, tag, err)
	}
	name := display.English.Tags().Name(t)
	if name == "" {
		return t.String(), nil
	}
	return name, nil
}
