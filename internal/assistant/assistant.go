// Package assistant orchestrates LLM conversations: per-user bounded
// session history, system prompt assembly, and inline action tag
// resolution on model replies.
package assistant

import (
	"context"

	"go.uber.org/zap"

	"github.com/hypersec/hypersecretary/internal/action"
)

// Completer is an LLM client capable of producing a text reply from a
// system prompt, prior turns, and a new user message.
type Completer interface {
	Model() string
	Complete(
		ctx context.Context,
		systemPrompt string,
		history []Message,
		userMessage string,
	) (string, error)
}

// Assistant routes user messages to a model and post-processes replies.
type Assistant struct {
	sessions  *SessionStore
	prompts   Prompts
	processor *action.Processor
	log       *zap.Logger
}

// New creates an assistant over the given session store, prompt pair,
// and action processor.
func New(
	sessions *SessionStore,
	prompts Prompts,
	processor *action.Processor,
	log *zap.Logger,
) *Assistant {
	return &Assistant{
		sessions:  sessions,
		prompts:   prompts,
		processor: processor,
		log:       log,
	}
}

// Ask sends userMessage to the model with the user's history and
// records both turns. When safe is true the base prompt is used and
// action tags are never scanned, so untrusted content (inbox bodies,
// search results) cannot trigger outbound actions.
func (a *Assistant) Ask(
	ctx context.Context,
	model Completer,
	userID int64,
	userMessage string,
	safe bool,
) (string, error) {
	prompt := a.prompts.Full
	if safe {
		prompt = a.prompts.Base
	}

	history := a.sessions.History(userID)
	reply, err := model.Complete(ctx, prompt, history, userMessage)
	if err != nil {
		a.log.Error("model call failed",
			zap.String("model", model.Model()),
			zap.Error(err))
		return "", err
	}

	if !safe {
		reply = a.processor.Process(ctx, reply)
	}

	a.sessions.Append(userID, RoleUser, userMessage)
	a.sessions.Append(userID, RoleAssistant, reply)
	return reply, nil
}

// Sessions exposes the underlying session store for history commands.
func (a *Assistant) Sessions() *SessionStore {
	return a.sessions
}
