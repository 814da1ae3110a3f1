// Command inboxctl inspects the inbox database from the terminal:
// recent items, per-type counts, and keyword search, without going
// through the bot.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hypersec/hypersecretary/internal/model"
	"github.com/hypersec/hypersecretary/internal/store"
)

var (
	colorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	colorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	colorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	colorSubtle = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	metaStyle   = lipgloss.NewStyle().Foreground(colorGray)
	unreadStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	sepStyle    = lipgloss.NewStyle().Foreground(colorSubtle)
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	dbPath := flag.String("db", "data/inbox.db", "path to the inbox database")
	limit := flag.Int("limit", 10, "maximum items to show")
	typeName := flag.String("type", "", "filter by item type")
	search := flag.String("search", "", "search by keyword instead of listing")
	counts := flag.Bool("counts", false, "show per-type counts and exit")
	flag.Parse()

	inbox, err := store.NewSQLiteStore(*dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = inbox.Close() }()

	ctx := context.Background()

	if *counts {
		return printCounts(ctx, inbox)
	}
	if *search != "" {
		return printSearch(ctx, inbox, *search, *limit)
	}

	var typeFilter model.ItemType
	if *typeName != "" {
		typeFilter = model.ItemType(strings.ToLower(*typeName))
		if !model.ValidType(typeFilter) {
			return fmt.Errorf("unknown type %q", *typeName)
		}
	}
	return printRecent(ctx, inbox, *limit, typeFilter)
}

func printRecent(
	ctx context.Context,
	inbox store.InboxStore,
	limit int,
	typeFilter model.ItemType,
) error {
	items, err := inbox.Recent(ctx, limit, typeFilter)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println(metaStyle.Render("inbox is empty"))
		return nil
	}

	label := "Inbox"
	if typeFilter != "" {
		label = fmt.Sprintf("%s %s", model.IconFor(typeFilter), typeFilter)
	}
	fmt.Println(headerStyle.Render(fmt.Sprintf("%s — %d item(s)", label, len(items))))
	fmt.Println(sepStyle.Render(strings.Repeat("─", 60)))

	for _, item := range items {
		printItem(item)
	}
	return nil
}

func printSearch(
	ctx context.Context,
	inbox store.InboxStore,
	keyword string,
	limit int,
) error {
	items, err := inbox.Search(ctx, keyword, limit)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println(metaStyle.Render(fmt.Sprintf("nothing found for %q", keyword)))
		return nil
	}

	fmt.Println(headerStyle.Render(
		fmt.Sprintf("🔍 %d item(s) for %q", len(items), keyword)))
	fmt.Println(sepStyle.Render(strings.Repeat("─", 60)))

	for _, item := range items {
		printItem(item)
	}
	return nil
}

func printItem(item model.InboxItem) {
	date := item.ReceivedAt.Format("02 Jan 15:04")
	line := fmt.Sprintf("%s %s  %s  %s",
		model.IconFor(item.Type),
		metaStyle.Render(date),
		headerStyle.Render(item.Title),
		metaStyle.Render(item.Source))
	if !item.Read {
		line = unreadStyle.Render("● ") + line
	} else {
		line = "  " + line
	}
	fmt.Println(line)

	if body := strings.TrimSpace(item.Body); body != "" {
		snippet := strings.ReplaceAll(body, "\n", " ")
		if len([]rune(snippet)) > 100 {
			snippet = string([]rune(snippet)[:100]) + "..."
		}
		fmt.Println("    " + metaStyle.Render(snippet))
	}
}

func printCounts(ctx context.Context, inbox store.InboxStore) error {
	counts, err := inbox.TypeCounts(ctx)
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		fmt.Println(metaStyle.Render("inbox is empty"))
		return nil
	}

	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, string(t))
	}
	sort.Strings(types)

	fmt.Println(headerStyle.Render("Inbox counts"))
	totalAll, unreadAll := 0, 0
	for _, t := range types {
		c := counts[model.ItemType(t)]
		totalAll += c.Total
		unreadAll += c.Unread
		unread := metaStyle.Render(fmt.Sprintf("%d unread", c.Unread))
		if c.Unread > 0 {
			unread = unreadStyle.Render(fmt.Sprintf("%d unread", c.Unread))
		}
		fmt.Printf("  %s %-9s %3d total, %s\n",
			model.IconFor(model.ItemType(t)), t, c.Total, unread)
	}
	fmt.Println(sepStyle.Render(strings.Repeat("─", 40)))
	fmt.Printf("  %s\n", headerStyle.Render(
		fmt.Sprintf("%d total, %d unread", totalAll, unreadAll)))
	return nil
}
