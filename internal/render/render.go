// Package render draws calls, stats and lookup lists for the terminal.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/templui/calldesk/internal/callfilter"
	"github.com/templui/calldesk/internal/model"
)

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted  lipgloss.TerminalColor = ac("240", "245")
	colorBorder lipgloss.TerminalColor = ac("250", "243")
	colorAccent lipgloss.TerminalColor = ac("27", "62")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1).
			Width(21)
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#d16d7a")).Bold(true)
)

var priorityColors = map[string]lipgloss.TerminalColor{
	model.PriorityUrgent: ac("#b91c1c", "#f87171"),
	model.PriorityHigh:   ac("#c2410c", "#fb923c"),
	model.PriorityMedium: ac("#a16207", "#facc15"),
	model.PriorityLow:    ac("240", "245"),
}

var statusColors = map[string]lipgloss.TerminalColor{
	model.CallStatusActive:      ac("#1d4ed8", "#60a5fa"),
	model.CallStatusPending:     ac("#a16207", "#facc15"),
	model.CallStatusFollowedUp:  ac("#6d28d9", "#a78bfa"),
	model.CallStatusNotReceived: ac("#b91c1c", "#f87171"),
	model.CallStatusCompleted:   ac("#15803d", "#4ade80"),
}

func Priority(p string) string {
	c, ok := priorityColors[p]
	if !ok {
		return p
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true).Render(p)
}

func Status(s string) string {
	c, ok := statusColors[s]
	if !ok {
		return s
	}
	return lipgloss.NewStyle().Foreground(c).Render(s)
}

// ResponseTime formats the time elapsed since a call came in: "45m" under an
// hour, "2h 5m" after that.
func ResponseTime(created, now time.Time) string {
	minutes := int(now.Sub(created) / time.Minute)
	if minutes < 0 {
		minutes = 0
	}
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// CallTable lists calls, one per row.
func CallTable(calls []*model.Call, now time.Time) string {
	if len(calls) == 0 {
		return mutedStyle.Render("No calls found.")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers("ID", "CALLER", "CONTACT", "PRIORITY", "STATUS", "RECEIVED", "RESPONSE", "NOTE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, call := range calls {
		note := "No note"
		if call.Note != nil && *call.Note != "" {
			note = truncate(*call.Note, 40)
		}
		if callfilter.IsOverdue(call, now) {
			note = overdueStyle.Render("overdue ") + note
		}

		t.Row(
			shortID(call.ID),
			call.CallerName+"\n"+mutedStyle.Render(call.CallerNumber),
			call.PersonToContact+"\n"+mutedStyle.Render("Operator: "+call.OperatorName),
			Priority(call.Priority),
			Status(call.Status),
			call.CreatedAt.Local().Format("2006-01-02 15:04"),
			ResponseTime(call.CreatedAt, now),
			note,
		)
	}

	return t.Render()
}

// CallDetail shows one call with its comment history and attachments.
func CallDetail(call *model.Call, now time.Time) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(call.CallerName) + " " + mutedStyle.Render(call.CallerNumber) + "\n")
	fmt.Fprintf(&b, "ID:        %s\n", call.ID)
	fmt.Fprintf(&b, "Contact:   %s (operator %s)\n", call.PersonToContact, call.OperatorName)
	fmt.Fprintf(&b, "Priority:  %s\n", Priority(call.Priority))
	fmt.Fprintf(&b, "Status:    %s\n", Status(call.Status))
	fmt.Fprintf(&b, "Received:  %s (%s ago)\n", call.CreatedAt.Local().Format("2006-01-02 15:04"), ResponseTime(call.CreatedAt, now))
	if call.FollowUpDate != nil {
		followUp := call.FollowUpDate.Local().Format("2006-01-02 15:04")
		if callfilter.IsOverdue(call, now) {
			followUp += " " + overdueStyle.Render("overdue")
		}
		fmt.Fprintf(&b, "Follow up: %s\n", followUp)
	}
	if call.Note != nil && *call.Note != "" {
		fmt.Fprintf(&b, "Note:      %s\n", *call.Note)
	}

	if len(call.CommentHistory) == 0 {
		b.WriteString(mutedStyle.Render("No comments yet.") + "\n")
		return b.String()
	}

	b.WriteString("\n" + titleStyle.Render("Comments") + "\n")
	for _, comment := range call.CommentHistory {
		fmt.Fprintf(&b, "%s %s\n", mutedStyle.Render(comment.CreatedAt.Local().Format("2006-01-02 15:04")+" ["+shortID(comment.ID)+"]"), comment.Text)
		for _, a := range comment.Attachments {
			fmt.Fprintf(&b, "    %s %s (%s, %s) %s\n", mutedStyle.Render("+"), a.FileName, a.FileType, FileSize(a.FileSize), mutedStyle.Render(a.FileURL))
		}
	}

	return b.String()
}

// StatusCards renders one bordered card per status plus the total.
func StatusCards(stats model.CallStats) string {
	card := func(label string, n int64, c lipgloss.TerminalColor) string {
		value := lipgloss.NewStyle().Bold(true).Foreground(c).Render(fmt.Sprintf("%d", n))
		return cardStyle.Render(mutedStyle.Render(label) + "\n" + value)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total", stats.TotalCalls, colorAccent),
		card(model.CallStatusActive, stats.ActiveCalls, statusColors[model.CallStatusActive]),
		card(model.CallStatusPending, stats.PendingCalls, statusColors[model.CallStatusPending]),
		card(model.CallStatusFollowedUp, stats.FollowedUpCalls, statusColors[model.CallStatusFollowedUp]),
		card(model.CallStatusNotReceived, stats.NotReceivedCalls, statusColors[model.CallStatusNotReceived]),
		card(model.CallStatusCompleted, stats.CompletedCalls, statusColors[model.CallStatusCompleted]),
	)
}

func AttachmentTable(attachments []*model.Attachment) string {
	if len(attachments) == 0 {
		return mutedStyle.Render("No attachments.")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers("ID", "NAME", "TYPE", "SIZE", "URL").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, a := range attachments {
		t.Row(a.ID, a.FileName, a.FileType, FileSize(a.FileSize), a.FileURL)
	}

	return t.Render()
}

func Options(options *model.DropdownOptions) string {
	list := func(title string, names []string) string {
		var b strings.Builder
		b.WriteString(titleStyle.Render(title) + "\n")
		if len(names) == 0 {
			b.WriteString(mutedStyle.Render("  (none)") + "\n")
		}
		for _, n := range names {
			b.WriteString("  " + n + "\n")
		}
		return b.String()
	}

	return list("Contact persons", options.ContactPersons) + "\n" + list("Operators", options.Operators)
}

// FileSize renders a byte count as B, KB or MB.
func FileSize(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
