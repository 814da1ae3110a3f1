package action

import (
	"context"
	"regexp"
	"strings"
)

// tagPattern matches inline action invocations of the form
// [ACTION: name free-form args].
var tagPattern = regexp.MustCompile(`\[ACTION:\s*(\S+)\s*(.*?)\]`)

// Processor scans assistant-generated text for action tags, executes each
// one, and splices the result message in place of the tag so the reader
// never sees raw tag syntax.
//
// The text is tokenized into literal segments and tag invocations up
// front and rebuilt by concatenation, so every byte outside the tags is
// preserved exactly. Tags resolve independently: one tag's failure only
// replaces that tag and never aborts the others.
//
// Callers handling untrusted content must not route it through Process at
// all; bypassing the processor is the safe mode.
type Processor struct {
	executor *Executor
}

// NewProcessor creates a processor driving the given executor.
func NewProcessor(executor *Executor) *Processor {
	return &Processor{executor: executor}
}

// Process resolves every action tag in text and returns the rewritten
// text. Tag-free text passes through unchanged with zero executor calls.
func (p *Processor) Process(ctx context.Context, text string) string {
	matches := tagPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		sb.WriteString(text[last:m[0]])

		name := strings.ToLower(text[m[2]:m[3]])
		args := strings.TrimSpace(text[m[4]:m[5]])
		sb.WriteString(p.executor.Execute(ctx, name, args))

		last = m[1]
	}
	sb.WriteString(text[last:])

	return sb.String()
}

// HasTags reports whether text contains at least one action tag.
func HasTags(text string) bool {
	return tagPattern.MatchString(text)
}
