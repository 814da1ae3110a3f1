package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hypersec/hypersecretary/internal/model"
	"github.com/hypersec/hypersecretary/internal/store"
)

type webhookHandler struct {
	inbox    store.InboxStore
	notifier Notifier
	log      *zap.Logger
}

func newWebhookHandler(
	inbox store.InboxStore, notifier Notifier, log *zap.Logger,
) *webhookHandler {
	return &webhookHandler{inbox: inbox, notifier: notifier, log: log}
}

type emailPayload struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	MessageID string `json:"message_id"`
}

// handleEmail receives email deliveries from an email worker.
func (h *webhookHandler) handleEmail(c *gin.Context) {
	var payload emailPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}

	sender := payload.From
	if sender == "" {
		sender = "unknown"
	}
	subject := payload.Subject
	if subject == "" {
		subject = "(no subject)"
	}

	_, err := h.inbox.Store(c.Request.Context(), store.NewItem{
		Type:   model.TypeEmail,
		Source: sender,
		Title:  subject,
		Body:   payload.Body,
		Metadata: map[string]any{
			"to":         payload.To,
			"message_id": payload.MessageID,
		},
	})
	if err != nil {
		h.log.Error("storing email", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}

	h.notifier.Notify(c.Request.Context(), fmt.Sprintf(
		"📧 New email\nFrom: %s\nSubject: %s", sender, subject))

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type notifyPayload struct {
	Type     string         `json:"type"`
	Source   string         `json:"source"`
	Title    string         `json:"title"`
	Body     string         `json:"body"`
	Metadata map[string]any `json:"metadata"`
	Notify   *bool          `json:"notify"`
}

// handleNotify receives generic notifications from pollers, automation
// tools, and scripts. Only title is required; unrecognized types
// normalize to "other".
func (h *webhookHandler) handleNotify(c *gin.Context) {
	var payload notifyPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}

	if payload.Title == "" {
		c.JSON(http.StatusBadRequest,
			gin.H{"error": "missing required field: title"})
		return
	}

	itemType := model.NormalizeType(payload.Type)
	source := payload.Source
	if source == "" {
		source = "webhook"
	}

	_, err := h.inbox.Store(c.Request.Context(), store.NewItem{
		Type:     itemType,
		Source:   source,
		Title:    payload.Title,
		Body:     payload.Body,
		Metadata: payload.Metadata,
	})
	if err != nil {
		h.log.Error("storing notification", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}

	// Absent flag means notify.
	if payload.Notify == nil || *payload.Notify {
		h.notifier.Notify(c.Request.Context(), fmt.Sprintf(
			"%s %s\nFrom: %s\n%s",
			model.IconFor(itemType), titleCase(string(itemType)),
			source, payload.Title))
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
