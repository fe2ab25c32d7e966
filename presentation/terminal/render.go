package terminal

import (
	"fmt"
	"strings"
	"time"

	"e2e_locators/application/runner"
	"e2e_locators/domain/entities"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	passedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func statusStyle(status entities.ResultStatus) lipgloss.Style {
	switch status {
	case entities.ResultPassed:
		return passedStyle
	case entities.ResultFailed:
		return failedStyle
	case entities.ResultSkipped:
		return skippedStyle
	}
	return mutedStyle
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func renderReport(report *entities.RunReport) string {
	t := newTable("Procedure", "Status", "Duration", "Error")
	for _, res := range report.Results {
		t.Row(
			res.Name,
			statusStyle(res.Status).Render(string(res.Status)),
			res.Duration.Round(time.Millisecond).String(),
			truncate(res.Error, 80),
		)
	}

	summary := fmt.Sprintf("%s  %s  %s  (%s, %s)",
		passedStyle.Render(fmt.Sprintf("%d passed", report.Count(entities.ResultPassed))),
		failedStyle.Render(fmt.Sprintf("%d failed", report.Count(entities.ResultFailed))),
		skippedStyle.Render(fmt.Sprintf("%d skipped", report.Count(entities.ResultSkipped))),
		report.Engine,
		report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond),
	)
	return titleStyle.Render("Run "+report.ID) + "\n" + t.String() + "\n" + summary
}

func renderHistory(reports []entities.RunReport) string {
	t := newTable("Run", "Engine", "Started", "Duration", "Passed", "Failed", "Skipped")
	for i := len(reports) - 1; i >= 0; i-- {
		r := reports[i]
		t.Row(
			r.ID,
			r.Engine,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String(),
			fmt.Sprint(r.Count(entities.ResultPassed)),
			fmt.Sprint(r.Count(entities.ResultFailed)),
			fmt.Sprint(r.Count(entities.ResultSkipped)),
		)
	}
	return t.String()
}

func renderMatches(infos []entities.ElementInfo) string {
	noun := "matches"
	if len(infos) == 1 {
		noun = "match"
	}
	title := titleStyle.Render(fmt.Sprintf("%d %s", len(infos), noun))
	if len(infos) == 0 {
		return title
	}

	t := newTable("#", "Role", "Name", "Text", "Attributes", "State")
	for i, info := range infos {
		role := info.Role
		if info.Level > 0 {
			role = fmt.Sprintf("%s (level %d)", role, info.Level)
		}
		t.Row(
			fmt.Sprint(i+1),
			role,
			info.Name,
			truncate(info.Text, 40),
			formatAttributes(info.Attributes),
			formatState(info.State),
		)
	}
	return title + "\n" + t.String()
}

func formatAttributes(attrs map[string]string) string {
	var parts []string
	for _, name := range []string{"id", "name", "class", "type"} {
		if v, ok := attrs[name]; ok {
			parts = append(parts, fmt.Sprintf("%s=%q", name, v))
		}
	}
	return strings.Join(parts, " ")
}

func formatState(s entities.ElementState) string {
	var flags []string
	if s.Visible {
		flags = append(flags, "visible")
	} else {
		flags = append(flags, "hidden")
	}
	if !s.Enabled {
		flags = append(flags, "disabled")
	}
	if s.Editable {
		flags = append(flags, "editable")
	}
	if s.Checked {
		flags = append(flags, "checked")
	}
	return strings.Join(flags, ",")
}

func procedureMarkdown(procs []runner.Procedure) string {
	var b strings.Builder
	b.WriteString("# Procedures\n\n")
	b.WriteString("| Name | Description |\n|---|---|\n")
	for _, p := range procs {
		fmt.Fprintf(&b, "| `%s` | %s |\n", p.Name, p.Description)
	}
	b.WriteString("\nRun them with `e2e run [name...]`.\n")
	return b.String()
}

func renderMarkdown(doc string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := renderer.Render(doc)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

func truncate(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len([]rune(s)) <= limit {
		return s
	}
	return string([]rune(s)[:limit-3]) + "..."
}
