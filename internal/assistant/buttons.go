package assistant

import (
	"encoding/json"
	"regexp"
	"strings"

	"taskdeck.app/assistant/internal/model"
)

// buttonsBlockPattern matches a single fenced block tagged "buttons" whose
// body is expected to be a JSON array of smart buttons.
var buttonsBlockPattern = regexp.MustCompile("(?s)```buttons\\s*\n(.*?)```")

// ParseButtons extracts the smart-buttons block from the model's final
// text. If the block is present and its body parses as a JSON array, it
// returns the remaining text and the buttons; on any parse failure the
// whole raw text is returned unchanged with nil buttons. Never errors —
// malformed embedded JSON degrades to "no buttons".
func ParseButtons(raw string) (string, []model.SmartButton) {
	loc := buttonsBlockPattern.FindStringSubmatchIndex(raw)
	if loc == nil {
		return raw, nil
	}

	body := raw[loc[2]:loc[3]]

	var buttons []model.SmartButton
	if err := json.Unmarshal([]byte(body), &buttons); err != nil {
		return raw, nil
	}

	display := raw[:loc[0]] + raw[loc[1]:]
	return strings.TrimSpace(display), buttons
}
