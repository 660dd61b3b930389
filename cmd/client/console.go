package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"pairpad/contract"
	"pairpad/domain"
	"pairpad/domain/event"
)

var (
	chatAuthor  = color.New(color.FgCyan, color.Bold)
	systemStyle = color.New(color.FgYellow)
	errorStyle  = color.New(color.FgRed, color.Bold)
	okStyle     = color.New(color.FgGreen)
)

// consoleSink renders engine notifications for the terminal. It runs on the
// engine loop, so it only formats and prints.
type consoleSink struct{}

func (consoleSink) Consume(_ context.Context, n event.Notification) error {
	switch n := n.(type) {
	case event.ConnectionChanged:
		if n.State == domain.Connected {
			fmt.Println(okStyle.Render("● connected"))
		} else {
			fmt.Println(errorStyle.Render("○ disconnected, retrying"))
		}
	case event.RoomJoined:
		fmt.Println(okStyle.Render(fmt.Sprintf("joined %q (%s), %d participant(s)",
			n.Snapshot.RoomName, n.Snapshot.RoomID, len(n.Snapshot.Roster))))
		for _, msg := range n.Snapshot.ChatHistory {
			printChat(msg)
		}
	case event.JoinFailed:
		fmt.Println(errorStyle.Render("join failed: " + n.Err.Error()))
	case event.RoomLeft:
		fmt.Println(systemStyle.Render("left the room"))
	case event.RosterUpdated:
		fmt.Println(systemStyle.Render(fmt.Sprintf("%d participant(s) in the room", len(n.Roster))))
	case event.DocumentReplaced:
		fmt.Println(systemStyle.Render("document updated by a teammate"))
	case event.ChatAppended:
		printChat(n.Message)
	case event.DocumentSaved:
		fmt.Println(okStyle.Render("document saved"))
	case event.RunStarted:
		fmt.Println(systemStyle.Render("running..."))
	case event.RunCompleted:
		printRunResult(n.Result)
	case event.SyncFailed:
		fmt.Println(errorStyle.Render(fmt.Sprintf("%s failed: %v", n.Op, n.Err)))
	case event.ActionRejected:
		fmt.Println(errorStyle.Render(fmt.Sprintf("%s rejected: %v", n.Action, n.Err)))
	}
	return nil
}

func printChat(msg domain.ChatMessage) {
	fmt.Printf("%s %s\n", chatAuthor.Render("["+msg.DisplayName+"]"), msg.Text)
}

func printRunResult(result domain.RunResult) {
	if result.Stdout != "" {
		fmt.Print(result.Stdout)
	}
	if result.Stderr != "" {
		fmt.Print(errorStyle.Render(result.Stderr))
	}
	if result.ExitCode == 0 {
		fmt.Println(okStyle.Render("exit 0"))
	} else {
		fmt.Println(errorStyle.Render(fmt.Sprintf("exit %d", result.ExitCode)))
	}
}

// printRoster renders /who: every participant with their cursor if known.
func printRoster(roster []domain.Participant, cursors map[string]domain.CursorPosition, selfID string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Name", "Participant", "Cursor"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, p := range roster {
		name := p.DisplayName
		if p.ID == selfID {
			name += " (you)"
		}
		cursor := "-"
		if pos, ok := cursors[p.ID]; ok {
			cursor = fmt.Sprintf("%d:%d", pos.Line, pos.Column)
		}
		table.Append([]string{name, shortID(p.ID), cursor})
	}
	table.Render()
}

func printSearchHits(hits []contract.SearchHit) {
	if len(hits) == 0 {
		fmt.Println(systemStyle.Render("no matches"))
		return
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Author", "Message"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, hit := range hits {
		table.Append([]string{hit.Author, hit.Text})
	}
	table.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
