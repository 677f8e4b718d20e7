package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func printHelp() {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f5b841")).
		Bold(true).
		Render("F O L I O")

	sub := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("portfolio content editor")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"folio", "Open the editor (interactive TUI)"},
		{"folio login", "Sign in as an admin"},
		{"folio logout", "Clear your session"},
		{"folio whoami", "Show the signed-in admin"},
		{"folio categories", "List categories"},
		{"folio open <slug>", "Open a portfolio's public page"},
		{"folio --version", "Show version"},
		{"folio help", "You are here"},
	}
	env := []struct{ name, desc string }{
		{"FOLIO_API_URL", "API base URL, including /api"},
		{"FOLIO_SITE_URL", "Public site URL"},
		{"FOLIO_TOKEN", "Bearer token, overrides the saved session"},
		{"FOLIO_CONFIG", "Config file (default ~/.folio/config.yaml)"},
		{"FOLIO_MOVE_POLICY", "reupload or reuse moved screenshots"},
		{"FOLIO_WEBP_QUALITY", "Upload quality, 1-100"},
		{"FOLIO_LOG_LEVEL", "debug, info, warn or error"},
	}

	fmt.Printf("\n  %s\n  %s\n\n  Commands:\n", title, sub)
	for _, c := range commands {
		fmt.Printf("    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}
	fmt.Printf("\n  Environment:\n")
	for _, e := range env {
		fmt.Printf("    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", e.name)), descStyle.Render(e.desc))
	}
	fmt.Println()
}
