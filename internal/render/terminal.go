package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	primaryColor   = lipgloss.Color("39")
	secondaryColor = lipgloss.Color("245")
	accentColor    = lipgloss.Color("212")
	errorColor     = lipgloss.Color("196")

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondaryColor).
			Padding(0, 1)

	selectedCardStyle = cardStyle.
				BorderForeground(primaryColor)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	metaStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Italic(true)

	badgeStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	requiredStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)
)

// cardWidth is the width of a full-span card in terminal cells.
const cardWidth = 72

// TerminalCanvas draws the design canvas as stacked boxes, one per card,
// with the settings panel of the selected field underneath.
func TerminalCanvas(view CanvasView) string {
	if len(view.Cards) == 0 {
		return metaStyle.Render("empty form: add a field to start")
	}
	blocks := make([]string, 0, len(view.Cards)+1)
	for _, c := range view.Cards {
		blocks = append(blocks, terminalCard(c))
	}
	if view.Settings != nil {
		blocks = append(blocks, terminalSettings(view.Settings))
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

func terminalCard(c Card) string {
	var b strings.Builder
	label := c.Field.Label
	if c.Field.Required && c.Field.TakesInput() {
		label += requiredStyle.Render(" *")
	}
	fmt.Fprintf(&b, "%s %s\n", metaStyle.Render(fmt.Sprintf("%2d ⠿", c.Index+1)), titleStyle.Render(label))

	meta := []string{c.Entry.Label, fmt.Sprintf("id=%s", c.Field.ID), fmt.Sprintf("span %d/%d", c.Span, GridColumns)}
	if c.Section != "" {
		meta = append(meta, "section "+c.Section)
	}
	b.WriteString(metaStyle.Render(strings.Join(meta, " · ")))

	for _, opt := range c.Field.Options {
		b.WriteString("\n  ○ " + opt)
	}
	if c.Body != "" {
		b.WriteString("\n  " + c.Body)
	}
	if len(c.Badges) > 0 {
		b.WriteString("\n" + badgeStyle.Render("["+strings.Join(c.Badges, "] [")+"]"))
	}

	style := cardStyle
	if c.Selected {
		style = selectedCardStyle
	}
	return style.Width(cardWidth * c.Span / GridColumns).Render(b.String())
}

func terminalSettings(p *SettingsPanel) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Settings · %s", p.Tab)))
	for _, c := range p.Controls() {
		fmt.Fprintf(&b, "\n%-18s %s", c.Label, answerText(c.Value))
	}
	return selectedCardStyle.Width(cardWidth).Render(b.String())
}
