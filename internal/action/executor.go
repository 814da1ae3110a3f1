package action

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// dispatchTimeout bounds a single outbound webhook call.
const dispatchTimeout = 15 * time.Second

// responseBodyLimit caps how much of a failed response body is echoed back.
const responseBodyLimit = 200

// Executor dispatches named actions as outbound webhook calls. It is
// stateless between calls; actions are fire-and-forget with no retries,
// at most once from this layer's perspective.
type Executor struct {
	registry   *Registry
	httpClient *http.Client
	log        *zap.Logger
}

// NewExecutor creates an executor over the given registry.
func NewExecutor(registry *Registry, log *zap.Logger) *Executor {
	return &Executor{
		registry: registry,
		httpClient: &http.Client{
			Timeout: dispatchTimeout,
		},
		log: log,
	}
}

// Execute fires the named action with the raw argument string and returns
// a human-readable result message. Every outcome, including an unknown
// name, a non-2xx response, or a transport failure, is reported as a
// message rather than an error: action failures never abort the caller.
func (e *Executor) Execute(ctx context.Context, name, args string) string {
	def, ok := e.registry.Get(name)
	if !ok {
		available := strings.Join(e.registry.Names(), ", ")
		if available == "" {
			available = "(none configured)"
		}
		return fmt.Sprintf("❌ Unknown action '%s'.\nAvailable: %s", name, available)
	}

	payload := buildPayload(def, args)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("❌ %s failed: %v", name, err)
	}

	method := strings.ToUpper(def.Method)
	if method == "" {
		method = http.MethodPost
	}

	req, err := http.NewRequestWithContext(ctx, method, def.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Sprintf("❌ %s failed: %v", name, err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range def.Headers {
		req.Header.Set(k, v)
	}

	e.log.Info("executing action",
		zap.String("action", name),
		zap.String("method", method),
	)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Sprintf("❌ %s failed: %v", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		desc := def.Description
		if desc == "" {
			desc = name
		}
		return fmt.Sprintf("✅ %s — done", desc)
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	return fmt.Sprintf("⚠️ %s returned %d: %s", name, resp.StatusCode, string(respBody))
}

// buildPayload assembles the JSON payload for a dispatch: the static body
// template, then named fields (last field absorbs the free-text tail), or
// a generic "value" key when no fields are declared.
func buildPayload(def Definition, args string) map[string]any {
	payload := make(map[string]any, len(def.BodyTemplate)+len(def.Fields))
	for k, v := range def.BodyTemplate {
		payload[k] = v
	}

	switch {
	case len(def.Fields) > 0 && args != "":
		parts := splitArgs(args, len(def.Fields))
		for i, field := range def.Fields {
			if i < len(parts) {
				payload[field] = parts[i]
			}
		}
	case args != "":
		payload["value"] = args
	}

	// IFTTT Maker webhooks expect positional value1/value2/value3 keys.
	if strings.Contains(def.URL, "maker.ifttt.com") && len(def.Fields) == 0 {
		for i, part := range splitArgs(args, 3) {
			payload[fmt.Sprintf("value%d", i+1)] = part
		}
	}

	return payload
}

// splitArgs splits s on whitespace into at most n tokens; the final token
// absorbs all remaining text.
func splitArgs(s string, n int) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n <= 1 {
		return []string{s}
	}

	var parts []string
	for len(parts) < n-1 {
		i := strings.IndexAny(s, " \t\n")
		if i < 0 {
			break
		}
		parts = append(parts, s[:i])
		s = strings.TrimSpace(s[i+1:])
		if s == "" {
			return parts
		}
	}
	return append(parts, s)
}
