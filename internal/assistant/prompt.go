package assistant

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hypersec/hypersecretary/internal/action"
)

const fallbackPrompt = "You are a helpful personal assistant."

// Prompts holds the two system prompt variants: Base excludes the
// actions section and is used for untrusted content paths, Full adds
// the generated actions instructions.
type Prompts struct {
	Base string
	Full string
}

// BuildPrompts assembles the system prompt from a prompt file and a
// directory of supplementary context markdown files, then appends the
// generated actions section for the Full variant. Missing files are
// skipped.
func BuildPrompts(promptPath, contextDir string, registry *action.Registry) Prompts {
	var parts []string

	if data, err := os.ReadFile(promptPath); err == nil {
		parts = append(parts, strings.TrimSpace(string(data)))
	}

	if entries, err := os.ReadDir(contextDir); err == nil {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			data, err := os.ReadFile(filepath.Join(contextDir, name))
			if err != nil {
				continue
			}
			parts = append(parts, fmt.Sprintf("## %s\n\n%s",
				sectionTitle(name), strings.TrimSpace(string(data))))
		}
	}

	base := fallbackPrompt
	if len(parts) > 0 {
		base = strings.Join(parts, "\n\n---\n\n")
	}

	return Prompts{
		Base: base,
		Full: base + actionsSection(registry),
	}
}

// sectionTitle turns "dinner_spots.md" into "Dinner Spots".
func sectionTitle(filename string) string {
	stem := strings.TrimSuffix(filename, ".md")
	words := strings.Split(strings.ReplaceAll(stem, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// actionsSection generates the prompt instructions describing the
// configured actions and how to invoke them with inline tags.
func actionsSection(registry *action.Registry) string {
	if registry == nil || registry.Len() == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n\n---\n\n## Available Actions\n\n")
	sb.WriteString("You can trigger real-world actions by including action tags in your response.\n")
	sb.WriteString("Use this format: [ACTION: action_name arg1 arg2 ...]\n")
	sb.WriteString("You may include multiple actions in one response.\n")
	sb.WriteString("Write your conversational response around the tags — the tags will be replaced with results before the user sees it.\n\n")
	sb.WriteString("Actions available:\n\n")

	for _, name := range registry.Names() {
		def, _ := registry.Get(name)
		desc := def.Description
		if desc == "" {
			desc = "no description"
		}
		sb.WriteString(fmt.Sprintf("- %s: %s\n", name, desc))
		sb.WriteString(fmt.Sprintf("  Usage: %s\n", usageLine(name, def)))
	}

	sb.WriteString("\nExamples:\n")
	sb.WriteString(`User: "Turn off the lights" → [ACTION: lights_off] Done, lights are off.` + "\n")
	sb.WriteString(`User: "Post hello world to mastodon" → [ACTION: toot hello world] Posted to Mastodon for you.` + "\n")
	sb.WriteString(`User: "Log my mood as 8, feeling great" → [ACTION: log_mood 8 feeling great] Logged your mood.` + "\n")
	sb.WriteString("\nOnly trigger actions when the user clearly intends it. Don't trigger actions for questions about actions.\n")
	sb.WriteString("If an action fails, tell the user what happened.")

	return sb.String()
}

func usageLine(name string, def action.Definition) string {
	if len(def.Fields) == 0 {
		return fmt.Sprintf("[ACTION: %s]", name)
	}
	placeholders := make([]string, len(def.Fields))
	for i, f := range def.Fields {
		placeholders[i] = "<" + f + ">"
	}
	return fmt.Sprintf("[ACTION: %s %s]", name, strings.Join(placeholders, " "))
}
