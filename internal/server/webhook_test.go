package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hypersec/hypersecretary/internal/model"
	"github.com/hypersec/hypersecretary/internal/server"
	"github.com/hypersec/hypersecretary/internal/store"
	"github.com/hypersec/hypersecretary/tests/testutil"
)

const testSecret = "test-secret"

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, text string) {
	n.messages = append(n.messages, text)
}

func newTestServer(t *testing.T) (*gin.Engine, *store.SQLiteStore, *recordingNotifier) {
	t.Helper()
	st := testutil.NewTestStore(t)
	notifier := &recordingNotifier{}
	router := server.New(st, notifier, testSecret, zap.NewNop())
	return router, st, notifier
}

func post(router *gin.Engine, path, secret, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set("X-Webhook-Secret", secret)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthNeedsNoSecret(t *testing.T) {
	router, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestNotifyRejectsMissingSecret(t *testing.T) {
	router, st, _ := newTestServer(t)

	w := post(router, "/webhook/notify", "", `{"title":"hi"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	items, err := st.Recent(context.Background(), 10, "")
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestNotifyRejectsWrongSecret(t *testing.T) {
	router, _, _ := newTestServer(t)

	w := post(router, "/webhook/notify", "wrong", `{"title":"hi"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNotifyRejectsInvalidJSON(t *testing.T) {
	router, _, _ := newTestServer(t)

	w := post(router, "/webhook/notify", testSecret, `{not json`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotifyRequiresTitle(t *testing.T) {
	router, st, _ := newTestServer(t)

	w := post(router, "/webhook/notify", testSecret, `{"type":"calendar"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "title")

	items, err := st.Recent(context.Background(), 10, "")
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestNotifyStoresCalendarEvent(t *testing.T) {
	router, st, notifier := newTestServer(t)

	w := post(router, "/webhook/notify", testSecret,
		`{"type":"calendar","title":"Board meeting","source":"Google Calendar"}`)
	require.Equal(t, http.StatusOK, w.Code)

	items, err := st.Recent(context.Background(), 10, "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, model.TypeCalendar, items[0].Type)
	require.Equal(t, "Board meeting", items[0].Title)
	require.Equal(t, "Google Calendar", items[0].Source)
	require.False(t, items[0].Read)

	require.Len(t, notifier.messages, 1)
	require.Contains(t, notifier.messages[0], "📅 Calendar")
	require.Contains(t, notifier.messages[0], "Board meeting")
}

func TestNotifyNormalizesUnknownType(t *testing.T) {
	router, st, _ := newTestServer(t)

	w := post(router, "/webhook/notify", testSecret,
		`{"type":"carrier-pigeon","title":"coo"}`)
	require.Equal(t, http.StatusOK, w.Code)

	items, err := st.Recent(context.Background(), 10, "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, model.TypeOther, items[0].Type)
	require.Equal(t, "webhook", items[0].Source, "missing source defaults")
}

func TestNotifyFalseSuppressesFanOut(t *testing.T) {
	router, st, notifier := newTestServer(t)

	w := post(router, "/webhook/notify", testSecret,
		`{"type":"news","title":"quiet update","notify":false}`)
	require.Equal(t, http.StatusOK, w.Code)

	items, err := st.Recent(context.Background(), 10, "")
	require.NoError(t, err)
	require.Len(t, items, 1, "item is stored even when fan-out is off")
	require.Empty(t, notifier.messages)
}

func TestNotifyCarriesMetadata(t *testing.T) {
	router, st, _ := newTestServer(t)

	w := post(router, "/webhook/notify", testSecret,
		`{"type":"mastodon","title":"🐘 Ada mentioned you","source":"@ada",`+
			`"metadata":{"url":"https://example.social/@ada/1"}}`)
	require.Equal(t, http.StatusOK, w.Code)

	items, err := st.Recent(context.Background(), 10, "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "https://example.social/@ada/1", items[0].Metadata["url"])
}

func TestEmailStoresAndNotifies(t *testing.T) {
	router, st, notifier := newTestServer(t)

	w := post(router, "/webhook/email", testSecret,
		`{"from":"ada@example.com","to":"me@example.com",`+
			`"subject":"Lunch?","body":"Are you free at noon?","message_id":"<m1>"}`)
	require.Equal(t, http.StatusOK, w.Code)

	items, err := st.Recent(context.Background(), 10, "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, model.TypeEmail, items[0].Type)
	require.Equal(t, "ada@example.com", items[0].Source)
	require.Equal(t, "Lunch?", items[0].Title)
	require.Equal(t, "Are you free at noon?", items[0].Body)
	require.Equal(t, "<m1>", items[0].Metadata["message_id"])

	require.Len(t, notifier.messages, 1)
	require.Contains(t, notifier.messages[0], "📧 New email")
	require.Contains(t, notifier.messages[0], "From: ada@example.com")
}

func TestEmailDefaultsMissingFields(t *testing.T) {
	router, st, _ := newTestServer(t)

	w := post(router, "/webhook/email", testSecret, `{"body":"hi"}`)
	require.Equal(t, http.StatusOK, w.Code)

	items, err := st.Recent(context.Background(), 10, "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "unknown", items[0].Source)
	require.Equal(t, "(no subject)", items[0].Title)
}
