package tui

import "github.com/charmbracelet/lipgloss"

// Theme styles the messages the renderer prints between prompts.
type Theme struct {
	ErrorPrefix string
	Error       lipgloss.Style
	Info        lipgloss.Style
	Success     lipgloss.Style
}

// DefaultTheme renders errors in bold red behind a warning sign.
func DefaultTheme() Theme {
	return Theme{
		ErrorPrefix: "⚠ ",
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Info:        lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Success:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
}

// PlainTheme applies no styling; handy for logs and tests.
func PlainTheme() Theme {
	return Theme{
		ErrorPrefix: "⚠ ",
		Error:       lipgloss.NewStyle(),
		Info:        lipgloss.NewStyle(),
		Success:     lipgloss.NewStyle(),
	}
}

func (t Theme) errorLine(msg string) string {
	return t.Error.Render(t.ErrorPrefix + msg)
}
