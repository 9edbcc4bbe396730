package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// header, input box and help line.
const chromeHeight = 6

// View renders the chat screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Title.Render("thrift chat"),
		m.theme.Subtitle.Render("Set savings goals, deposit into them, or ask about your spending."),
	)

	status := ""
	if m.waiting {
		status = m.spinner.View() + " thinking..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.renderTranscript(),
		status,
		m.theme.InputBox.Render(m.input.View()),
		m.help.ShortHelpView(m.keymap.ShortHelp()),
	)
}

func (m Model) transcriptHeight() int {
	return max(3, m.height-chromeHeight-1)
}

// renderTranscript renders the visible window of the conversation.
func (m Model) renderTranscript() string {
	lines := m.transcriptLines()
	height := m.transcriptHeight()

	end := len(lines) - min(m.scroll, max(0, len(lines)-height))
	start := max(0, end-height)
	visible := lines[start:end]
	for len(visible) < height {
		visible = append([]string{""}, visible...)
	}
	return strings.Join(visible, "\n")
}

func (m Model) transcriptLines() []string {
	width := max(20, m.width-4)
	wrap := lipgloss.NewStyle().Width(width)

	var lines []string
	for _, e := range m.entries {
		var label string
		style := m.theme.Message
		switch e.role {
		case speakerUser:
			name := m.userName
			if name == "" {
				name = "You"
			}
			label = m.theme.UserLabel.Render(name)
		case speakerAssistant:
			label = m.theme.AssistLabel.Render("thrift")
		case speakerError:
			label = m.theme.StatusError.Render("error")
			style = m.theme.StatusError.PaddingLeft(2)
		}

		lines = append(lines, label)
		lines = append(lines, strings.Split(style.Render(wrap.Render(e.text)), "\n")...)
		for _, g := range e.goals {
			lines = append(lines, m.theme.Goal.Render(g))
		}
		lines = append(lines, "")
	}
	return lines
}

func goalLine(title string, saved, target float64) string {
	return fmt.Sprintf("🎯 %s: %s of %s",
		title,
		decimal.NewFromFloat(saved).StringFixed(2),
		decimal.NewFromFloat(target).StringFixed(2))
}
