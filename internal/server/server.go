// Package server exposes the HTTP ingestion boundary: webhook
// endpoints that accept normalized notifications from email workers,
// pollers, and automation tools and persist them in the inbox.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hypersec/hypersecretary/internal/store"
)

// Notifier pushes a short notification text to the configured chat
// users. Implementations must not block longer than their own send
// timeout.
type Notifier interface {
	Notify(ctx context.Context, text string)
}

// NopNotifier discards notifications. Used when no chat transport is
// configured.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string) {}

// New builds the gin engine with all routes registered.
func New(
	inbox store.InboxStore,
	notifier Notifier,
	secret string,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := newWebhookHandler(inbox, notifier, log)
	webhooks := router.Group("/webhook", requireSecret(secret))
	{
		webhooks.POST("/email", h.handleEmail)
		webhooks.POST("/notify", h.handleNotify)
	}

	return router
}

// Run serves the engine on the given port until the listener fails.
func Run(router *gin.Engine, port int) error {
	return router.Run(fmt.Sprintf(":%d", port))
}

// requireSecret rejects requests whose X-Webhook-Secret header does not
// match the shared secret.
func requireSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-Webhook-Secret") != secret {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
