package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joebot/botprobe/internal/analyze"
	"github.com/joebot/botprobe/internal/cli"
	"github.com/joebot/botprobe/internal/config"
	"github.com/joebot/botprobe/internal/explore"
	"github.com/joebot/botprobe/internal/logging"
	"github.com/joebot/botprobe/internal/report"
	"github.com/joebot/botprobe/internal/telegram"
	"github.com/joebot/botprobe/internal/transport"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	switch os.Args[1] {
	case "explore":
		cmdProbe(report.ModeBlueprint, os.Args[2:])
	case "debug":
		cmdProbe(report.ModeDebug, os.Args[2:])
	case "path":
		cmdPath(os.Args[2:])
	case "reports":
		cmdReports(os.Args[2:])
	case "status":
		cmdStatus()
	case "onboard":
		cli.RunOnboard()
	case "version", "--version", "-v":
		fmt.Println(cli.TitleStyle.Render(
			fmt.Sprintf("  %s botprobe v%s", cli.Logo, cli.Version),
		))
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	dim := cli.DimStyle.Render
	fmt.Println()
	fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("  %s botprobe", cli.Logo)) + dim(" — Telegram bot surface mapper"))
	fmt.Println()
	fmt.Println("  " + cli.BoldStyle.Render("Usage"))
	fmt.Println()
	fmt.Printf("    botprobe %-22s %s\n", "explore @bot", dim("Map the bot's interaction surface"))
	fmt.Printf("    botprobe %-22s %s\n", "debug @bot", dim("Explore plus bug analysis and health score"))
	fmt.Printf("    botprobe %-22s %s\n", "path @bot \"A > [B]\"", dim("Replay a targeted button path"))
	fmt.Printf("    botprobe %-22s %s\n", "reports", dim("List saved reports"))
	fmt.Printf("    botprobe %-22s %s\n", "status", dim("Show configuration"))
	fmt.Printf("    botprobe %-22s %s\n", "onboard", dim("Initialize setup"))
	fmt.Printf("    botprobe %-22s %s\n", "version", dim("Show version"))
	fmt.Println()
	fmt.Println("  " + cli.BoldStyle.Render("Probe flags"))
	fmt.Println()
	fmt.Printf("    %-14s %s\n", "-timeout", dim("Response wait per interaction, seconds"))
	fmt.Printf("    %-14s %s\n", "-max-depth", dim("Button tree depth bound"))
	fmt.Printf("    %-14s %s\n", "-max-buttons", dim("Total button click budget"))
	fmt.Printf("    %-14s %s\n", "-save", dim("Also save the report under ~/.botprobe/reports"))
	fmt.Printf("    %-14s %s\n", "-verbose", dim("Debug-level progress logs on stderr"))
	fmt.Println()
}

// probeFlags are the knobs shared by explore, debug, and path.
type probeFlags struct {
	timeout    int
	maxDepth   int
	maxButtons int
	save       bool
	verbose    bool
}

func parseProbeFlags(name string, cfg *config.Config, args []string) (*probeFlags, []string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	pf := &probeFlags{}
	fs.IntVar(&pf.timeout, "timeout", cfg.Probe.TimeoutSeconds, "response wait per interaction, seconds")
	fs.IntVar(&pf.maxDepth, "max-depth", cfg.Probe.MaxDepth, "button tree depth bound")
	fs.IntVar(&pf.maxButtons, "max-buttons", cfg.Probe.MaxButtons, "total button click budget")
	fs.BoolVar(&pf.save, "save", false, "save the report to the reports directory")
	fs.BoolVar(&pf.verbose, "verbose", false, "debug-level progress logs")
	fs.Parse(args)
	return pf, fs.Args()
}

// --- explore / debug commands ---

func cmdProbe(mode string, args []string) {
	cfg := mustLoadConfig()
	pf, rest := parseProbeFlags(mode, cfg, args)
	if len(rest) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: botprobe %s [flags] @bot\n", mode)
		os.Exit(1)
	}
	bot := normalizeBot(rest[0])
	setupLogs(pf.verbose)

	rep := runWithClient(cfg, func(ctx context.Context, client *telegram.Client) *report.Report {
		engine := explore.New(client, explore.Options{
			Mode:       mode,
			Timeout:    time.Duration(pf.timeout) * time.Second,
			MaxDepth:   pf.maxDepth,
			MaxButtons: pf.maxButtons,
			Delay:      time.Duration(cfg.Probe.DelayMS) * time.Millisecond,
		})
		return engine.Run(ctx, bot)
	}, mode, bot)

	if mode == report.ModeDebug && rep.OK {
		rep.Bugs = analyze.Bugs(rep)
		score := analyze.HealthScore(rep.Bugs)
		rep.HealthScore = &score
	}

	finishProbe(rep, pf)
}

// --- path command ---

func cmdPath(args []string) {
	cfg := mustLoadConfig()
	pf, rest := parseProbeFlags("path", cfg, args)
	if len(rest) < 2 {
		fmt.Fprintln(os.Stderr, `Usage: botprobe path [flags] @bot "/start > [Menu] > [Settings]"`)
		os.Exit(1)
	}
	bot := normalizeBot(rest[0])
	path := rest[1]
	setupLogs(pf.verbose)

	rep := runWithClient(cfg, func(ctx context.Context, client *telegram.Client) *report.Report {
		engine := explore.New(client, explore.Options{
			Mode:    report.ModeTargeted,
			Timeout: time.Duration(pf.timeout) * time.Second,
			Delay:   time.Duration(cfg.Probe.DelayMS) * time.Millisecond,
		})
		return engine.RunPath(ctx, bot, path)
	}, report.ModeTargeted, bot)

	finishProbe(rep, pf)
}

// --- reports command ---

func cmdReports(args []string) {
	store := report.NewStore(config.ReportsDir())

	if len(args) > 0 && args[0] == "show" {
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: botprobe reports show <name>")
			os.Exit(1)
		}
		rep, err := store.Load(args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		printJSON(rep)
		return
	}

	entries, err := store.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("  %s botprobe Reports", cli.Logo)))
	fmt.Println()
	if len(entries) == 0 {
		fmt.Println(cli.DimStyle.Render("  No saved reports. Run a probe with -save."))
		fmt.Println()
		return
	}
	for _, e := range entries {
		fmt.Printf("  %s  %s\n", e.Modified.Format("2006-01-02 15:04"), e.Name)
	}
	fmt.Println()
	fmt.Println(cli.DimStyle.Render("  botprobe reports show <name> prints the full JSON"))
	fmt.Println()
}

// --- status command ---

func cmdStatus() {
	cfg, _ := config.Load()
	cli.RunStatus(cfg)
}

// --- helpers ---

// runWithClient connects the user-API client and runs fn inside the
// session. Connection and auth failures become a failed report so the
// output contract holds on every exit path.
func runWithClient(cfg *config.Config, fn func(ctx context.Context, client *telegram.Client) *report.Report, mode, bot string) *report.Report {
	if !cfg.HasCredentials() {
		fmt.Println()
		fmt.Println(cli.ErrStyle.Render("  Error: No Telegram API credentials configured"))
		fmt.Println(cli.DimStyle.Render("  Run botprobe onboard, or set telegram.apiId and telegram.apiHash in " + config.ConfigPath()))
		fmt.Println()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := telegram.New(cfg.Telegram.APIID, cfg.Telegram.APIHash, cfg.SessionPath())

	var rep *report.Report
	err := client.Run(ctx, func(ctx context.Context) error {
		rep = fn(ctx, client)
		return nil
	})
	if err != nil {
		if errors.Is(err, transport.ErrNotAuthorized) {
			return report.Failed(mode, bot,
				"telegram session is not authorized; sign in once with a telethon/gotd session tool and point sessionPath at it")
		}
		return report.Failed(mode, bot, fmt.Sprintf("telegram connection failed: %v", err))
	}
	return rep
}

func finishProbe(rep *report.Report, pf *probeFlags) {
	if pf.save && rep.OK {
		store := report.NewStore(config.ReportsDir())
		if _, err := store.Save(rep); err != nil {
			slog.Warn("could not save report", "err", err)
		}
	}

	printJSON(rep)
	fmt.Fprint(os.Stderr, cli.RenderSummary(rep))

	if !rep.OK {
		os.Exit(1)
	}
}

func printJSON(rep *report.Report) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	enc.Encode(rep)
}

// normalizeBot accepts @name, name, or a t.me link and returns @name.
func normalizeBot(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "https://t.me/")
	raw = strings.TrimPrefix(raw, "t.me/")
	if !strings.HasPrefix(raw, "@") {
		raw = "@" + raw
	}
	return raw
}

// setupLogs routes progress logs to stderr so stdout stays pure JSON,
// with a plain copy appended to the data-dir log file.
func setupLogs(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handlers := logging.Fanout{
		logging.NewHandler(os.Stderr, &logging.Options{Level: level, Color: true}),
	}
	logPath := filepath.Join(config.DataDir(), "botprobe.log")
	if f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
		handlers = append(handlers, logging.NewHandler(f, &logging.Options{Level: slog.LevelDebug}))
	}
	slog.SetDefault(slog.New(handlers))
}

func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", err)
	}
	return cfg
}
