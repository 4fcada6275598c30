// ============================================================================
// nic - Chat-Kommando-Framework
// ============================================================================
//
// Package:     console
// Description: Styles for the interactive command console
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package console

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	ColorAccent  = lipgloss.Color("#14B8A6") // Teal
	ColorInput   = lipgloss.Color("#38BDF8") // Sky
	ColorOK      = lipgloss.Color("#84CC16") // Lime
	ColorCode    = lipgloss.Color("#FB923C") // Orange
	ColorFailure = lipgloss.Color("#F43F5E") // Rose
	ColorBorder  = lipgloss.Color("#3F3F46") // Zinc 700

	ColorFg      = lipgloss.Color("#FAFAFA")
	ColorFgMuted = lipgloss.Color("#A1A1AA")
	ColorFgFaint = lipgloss.Color("#71717A")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted).
			Italic(true)
)

// History entry styles
var (
	InputLineStyle = lipgloss.NewStyle().
			Foreground(ColorInput).
			Bold(true)

	OutputStyle = lipgloss.NewStyle().
			Foreground(ColorFg).
			PaddingLeft(2)

	CommandLabelStyle = lipgloss.NewStyle().
				Foreground(ColorOK)

	IgnoredStyle = lipgloss.NewStyle().
			Foreground(ColorFgFaint).
			Italic(true).
			PaddingLeft(2)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorFailure).
			PaddingLeft(2)

	ErrorCodeStyle = lipgloss.NewStyle().
			Foreground(ColorCode).
			Bold(true)

	TokenStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted).
			PaddingLeft(2)

	TimeStyle = lipgloss.NewStyle().
			Foreground(ColorFgFaint)
)

// Panels
var (
	HistoryPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorder).
				Padding(0, 1)

	InputPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Padding(0, 1)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted).
			Padding(0, 1)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorInput).
			Bold(true)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(ColorFgFaint)
)

// RenderKeyHint renders a key binding hint
func RenderKeyHint(key, desc string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(desc)
}
