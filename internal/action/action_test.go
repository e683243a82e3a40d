package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spencerj41/droidmark-cli/api/schemas"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantKind   schemas.ActionKind
		wantTarget string
		wantValid  bool
	}{
		{
			name:       "plain click",
			raw:        `CLICK("Settings")`,
			wantKind:   schemas.ActionClick,
			wantTarget: "Settings",
			wantValid:  true,
		},
		{
			name:       "lowercase and single quotes",
			raw:        `click('Apps')`,
			wantKind:   schemas.ActionClick,
			wantTarget: "Apps",
			wantValid:  true,
		},
		{
			name:       "action embedded in chatty reply",
			raw:        "I think the best move is TYPE(\"hello world\") here.",
			wantKind:   schemas.ActionType,
			wantTarget: "hello world",
			wantValid:  true,
		},
		{
			name:       "empty target is allowed",
			raw:        `SCROLL("")`,
			wantKind:   schemas.ActionScroll,
			wantTarget: "",
			wantValid:  true,
		},
		{
			name:       "long press",
			raw:        `LONG_PRESS("icon")`,
			wantKind:   schemas.ActionLongPress,
			wantTarget: "icon",
			wantValid:  true,
		},
		{
			name:      "no recognizable pattern",
			raw:       "open the settings app",
			wantKind:  schemas.ActionUnknown,
			wantValid: false,
		},
		{
			name:      "error sentinel",
			raw:       "ERROR",
			wantKind:  schemas.ActionUnknown,
			wantValid: false,
		},
		{
			name:      "malformed, unquoted target",
			raw:       "CLICK(Settings)",
			wantKind:  schemas.ActionUnknown,
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantTarget, got.Target)
			assert.Equal(t, tt.wantValid, got.Valid)
		})
	}
}

// Kind priority is fixed by declaration order, not by position in the text.
// Traces were scored under CLICK-before-SCROLL; this pins that behavior.
func TestNormalizeKindPriority(t *testing.T) {
	got := Normalize(`First SCROLL("down"), then CLICK("Next")`)
	require.True(t, got.Valid)
	assert.Equal(t, schemas.ActionClick, got.Kind)
	assert.Equal(t, "Next", got.Target)
}

func TestNormalizeCanonicalForm(t *testing.T) {
	t.Run("valid action renders KIND with double quotes", func(t *testing.T) {
		got := Normalize("  click('Wi-Fi')  ")
		assert.Equal(t, `CLICK("Wi-Fi")`, got.Canonical())
	})

	t.Run("unknown action passes raw text through trimmed", func(t *testing.T) {
		got := Normalize("  tap the screen  ")
		assert.Equal(t, "tap the screen", got.Canonical())
	})
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name  string
		agent string
		truth string
		want  bool
	}{
		{"identical", `CLICK("OK")`, `CLICK("OK")`, true},
		{"surrounding whitespace", `  CLICK("OK")  `, `CLICK("OK")`, true},
		{"case folded", `CLICK("Ok")`, `click("ok")`, true},
		{"quote style", `CLICK('OK')`, `CLICK("OK")`, true},
		{"internal spacing", `CLICK( "OK" )`, `CLICK("OK")`, true},
		{"different target", `CLICK("OK")`, `CLICK("Okay")`, false},
		{"different kind", `SCROLL("down")`, `CLICK("down")`, false},
		{"unknown never matches well-formed truth", "open the app", `CLICK("App")`, false},
		{"error sentinel never matches", "ERROR", `CLICK("App")`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.agent, tt.truth))
		})
	}
}

func TestValidateTarget(t *testing.T) {
	elements := []string{"Calculator", "Settings", "Chrome"}

	t.Run("exact membership", func(t *testing.T) {
		assert.True(t, ValidateTarget(Normalize(`CLICK("Settings")`), elements))
	})

	t.Run("case-insensitive membership", func(t *testing.T) {
		assert.True(t, ValidateTarget(Normalize(`CLICK("settings")`), elements))
	})

	t.Run("absent element", func(t *testing.T) {
		assert.False(t, ValidateTarget(Normalize(`CLICK("Maps")`), elements))
	})

	t.Run("invalid action never validates", func(t *testing.T) {
		assert.False(t, ValidateTarget(Normalize("ERROR"), elements))
	})

	t.Run("empty target never validates", func(t *testing.T) {
		assert.False(t, ValidateTarget(Normalize(`SCROLL("")`), elements))
	})
}
