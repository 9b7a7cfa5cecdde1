package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains the style definitions for the preview
type Styles struct {
	Title      lipgloss.Style
	Slide      lipgloss.Style
	Current    lipgloss.Style
	Visible    lipgloss.Style
	Dim        lipgloss.Style
	Status     lipgloss.Style
	Cooldown   lipgloss.Style
	Suppressed lipgloss.Style
	Help       lipgloss.Style
	Log        lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		Slide:   lipgloss.NewStyle().PaddingLeft(2),
		Current: lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		Visible: lipgloss.NewStyle().Background(lipgloss.Color("238")),
		Dim:     lipgloss.NewStyle().Faint(true),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1),
		Cooldown:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		Suppressed: lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		Help:       lipgloss.NewStyle().Faint(true).MarginTop(1),
		Log: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1).
			MarginTop(1),
	}
}
