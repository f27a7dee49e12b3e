package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joebot/botprobe/internal/config"
)

// --- onboard selection model ---

type onboardChoice int

const (
	choiceUpgrade onboardChoice = iota
	choiceOverwrite
	choiceSkip
)

type onboardModel struct {
	choices []string
	cursor  int
	chosen  bool
	choice  onboardChoice
}

func (m onboardModel) Init() tea.Cmd { return nil }

func (m onboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.choice = choiceSkip
			m.chosen = true
			return m, tea.Quit
		case tea.KeyUp, tea.KeyShiftTab:
			if m.cursor > 0 {
				m.cursor--
			}
		case tea.KeyDown, tea.KeyTab:
			if m.cursor < len(m.choices)-1 {
				m.cursor++
			}
		case tea.KeyEnter:
			m.choice = onboardChoice(m.cursor)
			m.chosen = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m onboardModel) View() string {
	if m.chosen {
		return ""
	}

	s := "\n"
	s += fmt.Sprintf("  Config already exists at %s\n\n", DimStyle.Render(config.ConfigPath()))

	for i, choice := range m.choices {
		cursor := "  "
		if i == m.cursor {
			cursor = TitleStyle.Render("❯ ")
		}
		s += "  " + cursor + choice + "\n"
	}

	s += "\n" + DimStyle.Render("  ↑/↓ navigate · enter select · ctrl+c cancel") + "\n"
	return s
}

// --- credentials prompt model ---

type credentialsModel struct {
	inputs  []textinput.Model
	labels  []string
	focus   int
	done    bool
	aborted bool
}

func newCredentialsModel(cfg *config.Config) credentialsModel {
	idInput := textinput.New()
	idInput.Placeholder = "api_id from my.telegram.org"
	idInput.Prompt = "❯ "
	idInput.PromptStyle = lipgloss.NewStyle().Foreground(Accent)
	if cfg.Telegram.APIID != 0 {
		idInput.SetValue(strconv.Itoa(cfg.Telegram.APIID))
	}
	idInput.Focus()

	hashInput := textinput.New()
	hashInput.Placeholder = "api_hash from my.telegram.org"
	hashInput.Prompt = "❯ "
	hashInput.PromptStyle = lipgloss.NewStyle().Foreground(Accent)
	hashInput.SetValue(cfg.Telegram.APIHash)

	return credentialsModel{
		inputs: []textinput.Model{idInput, hashInput},
		labels: []string{"API ID", "API Hash"},
	}
}

func (m credentialsModel) Init() tea.Cmd { return textinput.Blink }

func (m credentialsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.aborted = true
			return m, tea.Quit
		case tea.KeyEnter:
			if m.focus < len(m.inputs)-1 {
				m.inputs[m.focus].Blur()
				m.focus++
				return m, m.inputs[m.focus].Focus()
			}
			m.done = true
			return m, tea.Quit
		case tea.KeyTab, tea.KeyShiftTab:
			m.inputs[m.focus].Blur()
			if msg.Type == tea.KeyTab {
				m.focus = (m.focus + 1) % len(m.inputs)
			} else {
				m.focus = (m.focus + len(m.inputs) - 1) % len(m.inputs)
			}
			return m, m.inputs[m.focus].Focus()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m credentialsModel) View() string {
	if m.done || m.aborted {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n  " + BoldStyle.Render("Telegram user-API credentials") + "\n")
	sb.WriteString(DimStyle.Render("  Leave blank to fill in later at "+config.ConfigPath()) + "\n\n")
	for i, in := range m.inputs {
		sb.WriteString(fmt.Sprintf("  %-10s %s\n", m.labels[i], in.View()))
	}
	sb.WriteString("\n" + DimStyle.Render("  enter next · tab switch · ctrl+c skip") + "\n")
	return sb.String()
}

// RunOnboard runs the onboard wizard.
func RunOnboard() {
	cfgPath := config.ConfigPath()
	var cfg *config.Config

	fmt.Println()
	fmt.Println(TitleStyle.Render(fmt.Sprintf("  %s botprobe Onboard", Logo)))

	if _, err := os.Stat(cfgPath); err == nil {
		// Config exists — ask what to do
		m := onboardModel{
			choices: []string{
				"Upgrade — add new fields, keep existing values",
				"Overwrite — replace with fresh defaults",
				"Skip — do not modify config",
			},
		}
		p := tea.NewProgram(m)
		final, err := p.Run()
		if err != nil {
			fmt.Println("  " + ErrStyle.Render("Error: "+err.Error()))
			os.Exit(1)
		}
		fm := final.(onboardModel)

		fmt.Println()
		switch fm.choice {
		case choiceUpgrade:
			upgraded, err := config.Upgrade()
			if err != nil {
				fmt.Println("  " + ErrStyle.Render("Error: "+err.Error()))
				os.Exit(1)
			}
			cfg = upgraded
			fmt.Println("  " + OkStyle.Render("✓") + " Upgraded config")
		case choiceOverwrite:
			cfg = config.DefaultConfig()
			if err := config.Save(cfg); err != nil {
				fmt.Println("  " + ErrStyle.Render("Error: "+err.Error()))
				os.Exit(1)
			}
			fmt.Println("  " + OkStyle.Render("✓") + " Overwritten config")
		default:
			fmt.Println("  " + DimStyle.Render("Config unchanged"))
			cfg, _ = config.Load()
		}
	} else {
		cfg = config.DefaultConfig()
		if err := config.Save(cfg); err != nil {
			fmt.Println("  " + ErrStyle.Render("Error: "+err.Error()))
			os.Exit(1)
		}
		fmt.Println()
		fmt.Println("  " + OkStyle.Render("✓") + " Created config at " + DimStyle.Render(cfgPath))
	}

	if promptCredentials(cfg) {
		if err := config.Save(cfg); err != nil {
			fmt.Println("  " + ErrStyle.Render("Error: "+err.Error()))
			os.Exit(1)
		}
		fmt.Println("  " + OkStyle.Render("✓") + " Saved credentials")
	}

	os.MkdirAll(config.ReportsDir(), 0o755)
	os.MkdirAll(filepath.Dir(cfg.SessionPath()), 0o755)
	fmt.Println("  " + OkStyle.Render("✓") + " Reports at " + DimStyle.Render(config.ReportsDir()))

	fmt.Println()
	fmt.Println(OkStyle.Render("  botprobe is ready!"))
	fmt.Println()
	fmt.Println(DimStyle.Render("  Next steps:"))
	fmt.Println(DimStyle.Render("  1. Check setup: botprobe status"))
	fmt.Println(DimStyle.Render("  2. Map a bot:   botprobe explore @YourBot"))
	fmt.Println(DimStyle.Render("  3. Find bugs:   botprobe debug @YourBot"))
	fmt.Println()
}

// promptCredentials runs the interactive credentials form and reports
// whether the config changed.
func promptCredentials(cfg *config.Config) bool {
	p := tea.NewProgram(newCredentialsModel(cfg))
	final, err := p.Run()
	if err != nil {
		return false
	}
	fm := final.(credentialsModel)
	if !fm.done {
		return false
	}

	changed := false
	if raw := strings.TrimSpace(fm.inputs[0].Value()); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil && id != cfg.Telegram.APIID {
			cfg.Telegram.APIID = id
			changed = true
		}
	}
	if hash := strings.TrimSpace(fm.inputs[1].Value()); hash != "" && hash != cfg.Telegram.APIHash {
		cfg.Telegram.APIHash = hash
		changed = true
	}
	return changed
}
