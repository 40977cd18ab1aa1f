package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/themilan1337/nerdie/internal/chat"
)

var (
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	sourceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

func renderAssistantMessage(message chat.Message) string {
	var b strings.Builder
	b.WriteString(message.Content)
	if len(message.Sources) > 0 {
		b.WriteString("\n")
		for _, source := range message.Sources {
			line := "  • " + source.Name
			if source.Page != nil {
				line += fmt.Sprintf(" (p. %d)", *source.Page)
			}
			b.WriteString(sourceStyle.Render(line))
			b.WriteString("\n")
		}
	}
	return b.String()
}
