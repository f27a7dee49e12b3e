package cli

import (
	"fmt"
	"os"

	"github.com/joebot/botprobe/internal/config"
	"github.com/joebot/botprobe/internal/report"
)

// RunStatus displays the current configuration status with styled output.
func RunStatus(cfg *config.Config) {
	cfgPath := config.ConfigPath()

	fmt.Println()
	fmt.Println(TitleStyle.Render(fmt.Sprintf("  %s botprobe Status", Logo)))
	fmt.Println()

	fmt.Printf("  %-12s %s  %s\n", "Config", StatusBadge(fileExists(cfgPath)), DimStyle.Render(cfgPath))
	fmt.Printf("  %-12s %s\n", "Credentials", StatusBadge(cfg.HasCredentials()))

	sessionPath := cfg.SessionPath()
	fmt.Printf("  %-12s %s  %s\n", "Session", StatusBadge(fileExists(sessionPath)), DimStyle.Render(sessionPath))

	reportsDir := config.ReportsDir()
	var saved int
	if entries, err := report.NewStore(reportsDir).List(); err == nil {
		saved = len(entries)
	}
	fmt.Printf("  %-12s %d saved  %s\n", "Reports", saved, DimStyle.Render(reportsDir))
	fmt.Println()

	fmt.Println("  " + BoldStyle.Render("Probe defaults"))
	fmt.Printf("    %-14s %ds\n", "timeout", cfg.Probe.TimeoutSeconds)
	fmt.Printf("    %-14s %d\n", "max depth", cfg.Probe.MaxDepth)
	fmt.Printf("    %-14s %d\n", "max buttons", cfg.Probe.MaxButtons)
	fmt.Printf("    %-14s %dms\n", "delay", cfg.Probe.DelayMS)
	fmt.Println()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
