package agent

import (
	"fmt"
	"strings"

	"github.com/spencerj41/droidmark-cli/api/schemas"
	"github.com/spencerj41/droidmark-cli/internal/config"
)

const systemPrompt = `You are an agent operating an Android device. ` +
	`Given a goal and the current screen state, choose the single next UI action.`

const fewShotExamples = `Examples:
Goal: Open calculator app
Observation: App: Home, UI Elements: ["Calculator", "Settings", "Chrome"]
Action: CLICK("Calculator")

Goal: Uninstall app
Observation: App: Settings, UI Elements: ["Apps", "Display", "Sound"]
Action: CLICK("Apps")

Goal: Send message "Hello"
Observation: App: Messages, UI Elements: ["Compose", "Search", "Settings"]
Action: CLICK("Compose")
`

const reflectionSuffix = `
Before choosing an action, consider:
1. What is the current state of the app?
2. What UI elements are available?
3. Which action will move me closer to the goal?
4. Are there any intermediate steps needed?

Reasoning: [Explain your thought process]
Action: [Your chosen action]
`

// buildPrompt renders the user prompt for one step under the named
// template. Template names are validated at agent construction, an unknown
// name here is a programmer error.
func buildPrompt(template, goal string, obs schemas.Observation) string {
	base := basePrompt(goal, obs)
	switch template {
	case config.TemplateBase:
		return base
	case config.TemplateFewShot:
		return fewShotExamples + "\n" + base
	case config.TemplateSelfReflection:
		return base + reflectionSuffix
	default:
		panic(fmt.Sprintf("unknown prompt template: %q", template))
	}
}

func basePrompt(goal string, obs schemas.Observation) string {
	app := obs.App
	if app == "" {
		app = "Unknown"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Goal: %s\n", goal)
	b.WriteString("Observation:\n")
	fmt.Fprintf(&b, "- App: %s\n", app)
	fmt.Fprintf(&b, "- UI Elements: %s\n", formatElements(obs.UIElements))
	b.WriteString("What is the next best action to achieve the goal? Respond in the format:\n")
	b.WriteString(`CLICK("element_name") or SCROLL("direction") or TYPE("text")` + "\n")
	b.WriteString("Action:")
	return b.String()
}

func formatElements(elements []string) string {
	quoted := make([]string, len(elements))
	for i, el := range elements {
		quoted[i] = fmt.Sprintf("%q", el)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
