package action

import (
	"strings"

	"github.com/spencerj41/droidmark-cli/api/schemas"
)

// noiseReplacer strips the characters that commonly differ between agent
// output and recorded ground truth without changing the denoted action:
// quote style and whitespace.
var noiseReplacer = strings.NewReplacer(`"`, "", `'`, "", " ", "", "\t", "", "\n", "", "\r", "")

// Matches reports whether an agent action string and a ground-truth action
// string denote the same step. It tries an exact comparison after trimming,
// then a fuzzy pass that removes quotes and whitespace and folds case. The
// fuzzy pass absorbs formatting noise only; it makes no attempt at semantic
// equivalence, so CLICK("OK") and CLICK("Okay") do not match.
func Matches(agentAction, groundTruth string) bool {
	if strings.TrimSpace(agentAction) == strings.TrimSpace(groundTruth) {
		return true
	}
	return scrub(agentAction) == scrub(groundTruth)
}

func scrub(s string) string {
	return noiseReplacer.Replace(strings.ToLower(s))
}

// ValidateTarget reports whether the action's target names a visible UI
// element, by exact then case-insensitive comparison. Invalid actions and
// empty targets never validate. The result is advisory, it feeds logging
// and analysis but never affects step scoring.
func ValidateTarget(a schemas.NormalizedAction, uiElements []string) bool {
	if !a.Valid || a.Target == "" {
		return false
	}
	for _, el := range uiElements {
		if a.Target == el || strings.EqualFold(a.Target, el) {
			return true
		}
	}
	return false
}
