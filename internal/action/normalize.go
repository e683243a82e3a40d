// Package action extracts canonical UI actions from free-form agent text
// and decides whether two action strings denote the same step.
package action

import (
	"regexp"
	"strings"

	"github.com/spencerj41/droidmark-cli/api/schemas"
)

// kindOrder fixes the priority of action kinds during normalization. When a
// reply contains more than one well-formed action substring, the first kind
// in this order wins regardless of position in the text. Existing traces
// were scored under this ordering; do not reorder it.
var kindOrder = []schemas.ActionKind{
	schemas.ActionClick,
	schemas.ActionScroll,
	schemas.ActionType,
	schemas.ActionSwipe,
	schemas.ActionLongPress,
}

// kindPatterns holds one compiled pattern per kind, KIND("target") with
// single or double quotes and a possibly empty target.
var kindPatterns = func() map[schemas.ActionKind]*regexp.Regexp {
	m := make(map[schemas.ActionKind]*regexp.Regexp, len(kindOrder))
	for _, k := range kindOrder {
		m[k] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(string(k)) + `\(["']([^"']*)["']\)`)
	}
	return m
}()

// Normalize scans raw agent text for a recognizable action pattern and
// returns its typed form. Text with no recognizable pattern, including the
// "ERROR" sentinel recorded for failed agent calls, normalizes to an
// invalid UNKNOWN action carrying the trimmed input.
func Normalize(raw string) schemas.NormalizedAction {
	trimmed := strings.TrimSpace(raw)
	for _, kind := range kindOrder {
		if m := kindPatterns[kind].FindStringSubmatch(raw); m != nil {
			return schemas.NormalizedAction{
				Kind:   kind,
				Target: m[1],
				Raw:    trimmed,
				Valid:  true,
			}
		}
	}
	return schemas.NormalizedAction{
		Kind:  schemas.ActionUnknown,
		Raw:   trimmed,
		Valid: false,
	}
}
