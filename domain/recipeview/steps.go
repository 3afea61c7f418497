package recipeview

import "strings"

// Steps splits instructions into display steps: one per line, trimmed,
// blank lines dropped.
func Steps(instructions string) []string {
	steps := []string{}
	for _, line := range strings.Split(instructions, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			steps = append(steps, s)
		}
	}
	return steps
}
