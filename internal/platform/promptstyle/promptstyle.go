package promptstyle

import "strings"

const marker = "CREATORCOACH_PROMPT_STYLE_V1"

const (
	ModeJSON = "json"
	ModeChat = "chat"
)

// ApplySystem prepends the shared coaching guidance to a system prompt. It is
// idempotent and leaves empty prompts empty.
func ApplySystem(system string, mode string) string {
	base := strings.TrimSpace(system)
	if base == "" {
		return base
	}
	if strings.Contains(base, marker) {
		return base
	}
	mode = strings.ToLower(strings.TrimSpace(mode))

	var b strings.Builder
	b.WriteString(marker)
	b.WriteString("\nYou coach new short-form video creators.")
	b.WriteString("\nKeep advice practical, specific and doable by one person with a phone.")
	b.WriteString("\nUse the creator's own topics, gear and audience as grounding; do not invent metrics or follower counts.")
	b.WriteString("\nAvoid medical, legal or financial claims.")
	if mode == ModeJSON {
		b.WriteString("\nReturn a single JSON object that conforms to the schema and contains no extra keys.")
	} else {
		b.WriteString("\nWrite in a warm, direct voice. Short paragraphs; lists when they help.")
	}
	b.WriteString("\n---\n")
	b.WriteString(base)
	return strings.TrimSpace(b.String())
}
