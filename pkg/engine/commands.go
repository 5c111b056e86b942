package engine

import (
	"sort"
	"strings"
)

// slashCommands maps reserved shortcut tokens to the directive
// actually sent to the backend. The player's history keeps the
// literal token.
var slashCommands = map[string]string{
	"/look":      "Look around and describe the surroundings in vivid detail.",
	"/inventory": "List the items I am carrying and briefly describe each.",
	"/stats":     "Describe my current physical and mental condition.",
	"/hint":      "Give a subtle in-world hint about how to make progress. Do not break character.",
	"/summary":   "Summarize the story so far in a few sentences.",
	"/quest":     "Remind me of my current objective.",
}

// ExpandCommand substitutes a reserved slash command with its
// directive. Anything else passes through untouched; only an exact
// trimmed match expands.
func ExpandCommand(action string) string {
	if expanded, ok := slashCommands[strings.ToLower(strings.TrimSpace(action))]; ok {
		return expanded
	}
	return action
}

// IsCommand reports whether the input is a reserved slash command.
func IsCommand(action string) bool {
	_, ok := slashCommands[strings.ToLower(strings.TrimSpace(action))]
	return ok
}

// Commands returns the reserved tokens for help screens.
func Commands() []string {
	out := make([]string, 0, len(slashCommands))
	for token := range slashCommands {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}
