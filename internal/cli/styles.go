package cli

import "github.com/charmbracelet/lipgloss"

var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	WarnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	MutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	DoneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Strikethrough(true)
)

func Success(msg string) string { return SuccessStyle.Render("✓ " + msg) }

func Warning(msg string) string { return WarnStyle.Render("⚠ " + msg) }

func Failure(msg string) string { return ErrorStyle.Render("❌ " + msg) }

// Checkbox renders a completion marker.
func Checkbox(done bool) string {
	if done {
		return SuccessStyle.Render("[x]")
	}
	return "[ ]"
}
