package telegram

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/hypersec/hypersecretary/internal/action"
	"github.com/hypersec/hypersecretary/internal/assistant"
	"github.com/hypersec/hypersecretary/internal/model"
	"github.com/hypersec/hypersecretary/internal/store"
)

// Bot wires the Telegram transport to the inbox, the assistant, and
// the action executor.
type Bot struct {
	client    *Client
	inbox     store.InboxStore
	assist    *assistant.Assistant
	claude    assistant.Completer
	gemini    assistant.Completer
	registry  *action.Registry
	executor  *action.Executor
	allowed   map[int64]bool
	allowedID []int64
	log       *zap.Logger
}

// NewBot creates the bot. An empty allowedUsers list admits everyone.
func NewBot(
	client *Client,
	inbox store.InboxStore,
	assist *assistant.Assistant,
	claude assistant.Completer,
	gemini assistant.Completer,
	registry *action.Registry,
	executor *action.Executor,
	allowedUsers []int64,
	log *zap.Logger,
) *Bot {
	allowed := make(map[int64]bool, len(allowedUsers))
	for _, id := range allowedUsers {
		allowed[id] = true
	}
	return &Bot{
		client:    client,
		inbox:     inbox,
		assist:    assist,
		claude:    claude,
		gemini:    gemini,
		registry:  registry,
		executor:  executor,
		allowed:   allowed,
		allowedID: allowedUsers,
		log:       log,
	}
}

// Run long-polls for updates until ctx is canceled.
func (b *Bot) Run(ctx context.Context) error {
	var offset int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		updates, err := b.client.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.log.Error("polling updates", zap.Error(err))
			continue
		}

		for _, u := range updates {
			offset = u.UpdateID + 1
			if u.Message == nil || u.Message.From == nil {
				continue
			}
			b.handleMessage(ctx, u.Message)
		}
	}
}

// Notify sends text to every allowed user. Used for webhook fan-out.
func (b *Bot) Notify(ctx context.Context, text string) {
	for _, id := range b.allowedID {
		if err := b.client.SendMessage(ctx, id, text); err != nil {
			b.log.Error("notifying user",
				zap.Int64("user", id), zap.Error(err))
		}
	}
}

func (b *Bot) authorized(userID int64) bool {
	if len(b.allowed) == 0 {
		return true
	}
	return b.allowed[userID]
}

func (b *Bot) handleMessage(ctx context.Context, msg *Message) {
	if !b.authorized(msg.From.ID) {
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	command, args := splitCommand(text)
	switch command {
	case "/inbox":
		b.cmdInbox(ctx, msg, args)
	case "/search":
		b.cmdSearch(ctx, msg, args)
	case "/ask":
		b.cmdAsk(ctx, msg, args)
	case "/do":
		b.cmdDo(ctx, msg, args)
	case "/actions":
		b.cmdActions(ctx, msg)
	case "/clear":
		b.cmdClear(ctx, msg)
	case "/status":
		b.cmdStatus(ctx, msg)
	case "/help", "/start":
		b.cmdHelp(ctx, msg)
	case "/claude":
		b.cmdChat(ctx, msg, args, b.claude, "🟠 ")
	case "/flash":
		b.cmdChat(ctx, msg, args, b.gemini, "⚡ ")
	default:
		// Plain text goes to the fast model.
		b.cmdChat(ctx, msg, text, b.gemini, "⚡ ")
	}
}

// splitCommand separates a leading /command from its arguments. Text
// without a leading slash returns an empty command.
func splitCommand(text string) (string, string) {
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	parts := strings.SplitN(text, " ", 2)
	command := strings.ToLower(parts[0])
	// Strip the @botname suffix Telegram appends in groups.
	if at := strings.Index(command, "@"); at > 0 {
		command = command[:at]
	}
	args := ""
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}
	return command, args
}

func (b *Bot) reply(ctx context.Context, msg *Message, text string) {
	if err := b.client.SendMessage(ctx, msg.Chat.ID, text); err != nil {
		b.log.Error("sending reply", zap.Error(err))
	}
}

func (b *Bot) cmdChat(
	ctx context.Context,
	msg *Message,
	text string,
	completer assistant.Completer,
	prefix string,
) {
	if text == "" {
		b.reply(ctx, msg, "Send your message after the command, or just type normally.")
		return
	}

	_ = b.client.SendTyping(ctx, msg.Chat.ID)
	reply, err := b.assist.Ask(ctx, completer, msg.From.ID, text, false)
	if err != nil {
		b.reply(ctx, msg, fmt.Sprintf("⚠️ %s error: %v", completer.Model(), err))
		return
	}
	b.reply(ctx, msg, prefix+reply)
}

func (b *Bot) cmdInbox(ctx context.Context, msg *Message, args string) {
	var typeFilter model.ItemType
	if args != "" {
		filter := model.ItemType(strings.ToLower(args))
		if !model.ValidType(filter) {
			names := make([]string, 0, len(model.ItemTypes))
			for _, t := range model.ItemTypes {
				names = append(names, string(t))
			}
			sort.Strings(names)
			b.reply(ctx, msg, fmt.Sprintf("Unknown type '%s'.\nAvailable: %s",
				args, strings.Join(names, ", ")))
			return
		}
		typeFilter = filter
	}

	items, err := b.inbox.Recent(ctx, 10, typeFilter)
	if err != nil {
		b.log.Error("listing inbox", zap.Error(err))
		b.reply(ctx, msg, "⚠️ Could not read the inbox right now.")
		return
	}
	if len(items) == 0 {
		label := ""
		if typeFilter != "" {
			label = " " + string(typeFilter)
		}
		b.reply(ctx, msg, fmt.Sprintf("📭 No%s items yet.", label))
		return
	}

	header, err := b.inboxHeader(ctx, typeFilter)
	if err != nil {
		b.log.Error("counting inbox", zap.Error(err))
		b.reply(ctx, msg, "⚠️ Could not read the inbox right now.")
		return
	}

	lines := []string{header, ""}
	for _, item := range items {
		lines = append(lines, formatItemLine(item))
	}

	if err := b.inbox.MarkAllRead(ctx, typeFilter); err != nil {
		b.log.Error("marking read", zap.Error(err))
	}
	b.reply(ctx, msg, strings.Join(lines, "\n"))
}

func (b *Bot) inboxHeader(
	ctx context.Context, typeFilter model.ItemType,
) (string, error) {
	if typeFilter != "" {
		unread, err := b.inbox.UnreadCount(ctx, typeFilter)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s (%d unread)",
			model.IconFor(typeFilter),
			titleCase(string(typeFilter)), unread), nil
	}

	counts, err := b.inbox.TypeCounts(ctx)
	if err != nil {
		return "", err
	}

	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, string(t))
	}
	sort.Strings(types)

	var parts []string
	for _, t := range types {
		if c := counts[model.ItemType(t)]; c.Unread > 0 {
			parts = append(parts, fmt.Sprintf("%s %d",
				model.IconFor(model.ItemType(t)), c.Unread))
		}
	}
	summary := "all read"
	if len(parts) > 0 {
		summary = strings.Join(parts, " ")
	}
	return fmt.Sprintf("📬 Inbox (%s)", summary), nil
}

func (b *Bot) cmdSearch(ctx context.Context, msg *Message, args string) {
	if args == "" {
		b.reply(ctx, msg, "Usage: /search <keyword>\n\nExample: /search OpenTable")
		return
	}

	items, err := b.inbox.Search(ctx, args, 10)
	if err != nil {
		b.log.Error("searching inbox", zap.Error(err))
		b.reply(ctx, msg, "⚠️ Could not search the inbox right now.")
		return
	}
	if len(items) == 0 {
		b.reply(ctx, msg, fmt.Sprintf("Nothing found for '%s'.", args))
		return
	}

	lines := []string{fmt.Sprintf("🔍 Found %d item(s) for '%s':\n", len(items), args)}
	for _, item := range items {
		lines = append(lines, formatItemLine(item))
		snippet := strings.ReplaceAll(truncateRunes(item.Body, 120), "\n", " ")
		if snippet != "" {
			lines = append(lines, "   "+snippet+"...")
		}
		lines = append(lines, "")
	}
	b.reply(ctx, msg, strings.Join(lines, "\n"))
}

func (b *Bot) cmdAsk(ctx context.Context, msg *Message, args string) {
	if args == "" {
		b.reply(ctx, msg, "Usage: /ask <question>\n\n"+
			"Examples:\n"+
			"/ask what reservations do I have this week?\n"+
			"/ask summarise today's notifications\n"+
			"/ask any payment confirmations recently?")
		return
	}

	items, err := b.inbox.Recent(ctx, 30, "")
	if err != nil {
		b.log.Error("listing inbox", zap.Error(err))
		b.reply(ctx, msg, "⚠️ Could not read the inbox right now.")
		return
	}
	if len(items) == 0 {
		b.reply(ctx, msg, "📭 Nothing in your inbox to search.")
		return
	}

	var sections []string
	for _, item := range items {
		sections = append(sections, fmt.Sprintf(
			"Type: %s\nFrom: %s\nDate: %s\nTitle: %s\n\n%s",
			item.Type, item.Source,
			item.ReceivedAt.Format("2006-01-02 15:04"),
			item.Title, truncateRunes(item.Body, 2000)))
	}

	prompt := fmt.Sprintf(
		"Based on the following items from my inbox, answer this question: %s\n\n"+
			"Be concise and direct. If the answer isn't in the inbox, say so.\n\n"+
			"---\n\nINBOX ITEMS:\n%s",
		args, strings.Join(sections, "\n\n---\n\n"))

	_ = b.client.SendTyping(ctx, msg.Chat.ID)

	// Inbox content is untrusted, so the safe path never scans for
	// action tags.
	reply, err := b.assist.Ask(ctx, b.gemini, msg.From.ID, prompt, true)
	if err != nil {
		b.reply(ctx, msg, fmt.Sprintf("⚠️ %s error: %v", b.gemini.Model(), err))
		return
	}
	b.reply(ctx, msg, "🔍 "+reply)
}

func (b *Bot) cmdDo(ctx context.Context, msg *Message, args string) {
	if args == "" {
		if b.registry.Len() == 0 {
			b.reply(ctx, msg, "No actions configured. Create an actions.json file.")
			return
		}
		lines := []string{"Usage: /do <action> [args]\n\nAvailable actions:"}
		for _, name := range b.registry.Names() {
			def, _ := b.registry.Get(name)
			fieldStr := "[text]"
			if len(def.Fields) > 0 {
				placeholders := make([]string, len(def.Fields))
				for i, f := range def.Fields {
					placeholders[i] = "<" + f + ">"
				}
				fieldStr = strings.Join(placeholders, " ")
			}
			lines = append(lines, fmt.Sprintf("  ⚡ /do %s %s", name, fieldStr))
			if def.Description != "" {
				lines = append(lines, "     "+def.Description)
			}
		}
		b.reply(ctx, msg, strings.Join(lines, "\n"))
		return
	}

	parts := strings.SplitN(args, " ", 2)
	name := strings.ToLower(parts[0])
	actionArgs := ""
	if len(parts) > 1 {
		actionArgs = strings.TrimSpace(parts[1])
	}

	b.log.Info("manual action",
		zap.Int64("user", msg.From.ID),
		zap.String("action", name))
	_ = b.client.SendTyping(ctx, msg.Chat.ID)
	b.reply(ctx, msg, b.executor.Execute(ctx, name, actionArgs))
}

func (b *Bot) cmdActions(ctx context.Context, msg *Message) {
	if b.registry.Len() == 0 {
		b.reply(ctx, msg, "No actions configured.\n\n"+
			"Create an actions.json file with your webhook URLs. See README for examples.")
		return
	}

	lines := []string{"⚡ Available actions:\n"}
	for _, name := range b.registry.Names() {
		def, _ := b.registry.Get(name)
		desc := def.Description
		if desc == "" {
			desc = "no description"
		}
		fieldStr := ""
		if len(def.Fields) > 0 {
			placeholders := make([]string, len(def.Fields))
			for i, f := range def.Fields {
				placeholders[i] = "<" + f + ">"
			}
			fieldStr = " " + strings.Join(placeholders, " ")
		}
		lines = append(lines, fmt.Sprintf("  /do %s%s", name, fieldStr))
		lines = append(lines, fmt.Sprintf("  └ %s\n", desc))
	}
	b.reply(ctx, msg, strings.Join(lines, "\n"))
}

func (b *Bot) cmdClear(ctx context.Context, msg *Message) {
	b.assist.Sessions().Clear(msg.From.ID)
	b.reply(ctx, msg, "🧹 History cleared.")
}

func (b *Bot) cmdStatus(ctx context.Context, msg *Message) {
	counts, err := b.inbox.TypeCounts(ctx)
	if err != nil {
		b.log.Error("counting inbox", zap.Error(err))
		b.reply(ctx, msg, "⚠️ Could not read the inbox right now.")
		return
	}

	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, string(t))
	}
	sort.Strings(types)

	var inboxLines []string
	totalAll, unreadAll := 0, 0
	for _, t := range types {
		c := counts[model.ItemType(t)]
		totalAll += c.Total
		unreadAll += c.Unread
		inboxLines = append(inboxLines, fmt.Sprintf(
			"  %s %s: %d total, %d unread",
			model.IconFor(model.ItemType(t)), t, c.Total, c.Unread))
	}
	inboxSummary := "  (empty)"
	if len(inboxLines) > 0 {
		inboxSummary = strings.Join(inboxLines, "\n")
	}

	b.reply(ctx, msg, fmt.Sprintf(
		"🤖 Hypersecretary online\n"+
			"Flash: %s\n"+
			"Claude: %s\n"+
			"History: %d messages\n"+
			"Actions: %d\n"+
			"Inbox: %d total, %d unread\n%s",
		b.gemini.Model(), b.claude.Model(),
		b.assist.Sessions().Len(msg.From.ID),
		b.registry.Len(),
		totalAll, unreadAll, inboxSummary))
}

func (b *Bot) cmdHelp(ctx context.Context, msg *Message) {
	names := make([]string, 0, len(model.ItemTypes))
	for _, t := range model.ItemTypes {
		names = append(names, string(t))
	}
	sort.Strings(names)

	b.reply(ctx, msg,
		"📋 Hypersecretary\n\n"+
			"Just type → Gemini Flash ⚡\n"+
			"/claude <msg> → Claude 🟠\n\n"+
			"Inbox:\n"+
			"/inbox → All recent items\n"+
			"/inbox <type> → Filter ("+strings.Join(names, ", ")+")\n"+
			"/search <keyword> → Search inbox\n"+
			"/ask <question> → Ask about your inbox\n\n"+
			"Actions:\n"+
			"/do <action> [args] → Trigger an action\n"+
			"/actions → List available actions\n\n"+
			"Other:\n"+
			"/clear → Reset conversation history\n"+
			"/status → Bot info\n"+
			"/help → This message")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
