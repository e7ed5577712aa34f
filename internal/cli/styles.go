package cli

import (
	"log/slog"

	"github.com/charmbracelet/lipgloss"
)

// Color scheme for CLI output.
var (
	answerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	refStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFD7"))
	idStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C")).Italic(true)
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D787")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF005F")).Bold(true)
)

func setDefaultLogger(logger *slog.Logger) {
	slog.SetDefault(logger)
}
