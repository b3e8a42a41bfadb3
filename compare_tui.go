package main

import (
	"fmt"
	"strings"
	"time"

	"catfill/internal/logger"
	"catfill/internal/suggest"
	"catfill/internal/textmatch"
	"catfill/internal/usercfg"

	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/browser"
)

const (
	focusOriginal = iota
	focusCleaned
)

// recomputeMsg fires after the debounce delay; only the latest seq counts.
type recomputeMsg struct{ seq int }

// appliedMsg carries the cleaned name after a suggestion was applied to from.
type appliedMsg struct{ from, cleaned string }

type searchDoneMsg struct{ err error }

type compareModel struct {
	app       *app
	inputs    []textinput.Model
	focus     int
	result    suggest.Result
	cursor    int
	seq       int
	applying  bool // a suggestion is being applied; further enters are ignored
	highlight bool
	status    string
	width     int
	debounce  time.Duration
	styles    compareStyles
}

type compareStyles struct {
	header   lipgloss.Style
	label    lipgloss.Style
	missing  lipgloss.Style
	selected lipgloss.Style
	muted    lipgloss.Style
	help     lipgloss.Style
	ok       lipgloss.Style
	box      lipgloss.Style
}

func newCompareStyles() compareStyles {
	return compareStyles{
		header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		label:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		missing:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("220")),
		selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")),
		muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		help:     lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		ok:       lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		box:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).BorderForeground(lipgloss.Color("240")),
	}
}

func initialCompareModel(a *app, original, cleaned string) compareModel {
	orig := textinput.New()
	orig.Placeholder = "original item name"
	orig.CharLimit = 512
	orig.SetValue(original)

	cl := textinput.New()
	cl.Placeholder = "cleaned item name"
	cl.CharLimit = 512
	cl.SetValue(cleaned)

	m := compareModel{
		app:       a,
		inputs:    []textinput.Model{orig, cl},
		focus:     focusCleaned,
		highlight: !usercfg.GetUIPrefs().NoHighlight,
		debounce:  a.cfg.DebounceDuration(),
		styles:    newCompareStyles(),
	}
	m.inputs[focusCleaned].Focus()
	m.recompute()
	m.status = ""
	return m
}

func (m compareModel) Init() tea.Cmd { return textinput.Blink }

func (m compareModel) original() string { return m.inputs[focusOriginal].Value() }
func (m compareModel) cleaned() string  { return m.inputs[focusCleaned].Value() }

// recompute refreshes the result and reports what changed since last time.
func (m *compareModel) recompute() {
	prev := m.result.Suggestions
	m.result = m.app.compare(m.original(), m.cleaned())

	added, removed := suggest.Diff(prev, m.result.Suggestions)
	switch {
	case len(added) == 0 && len(removed) == 0:
		m.status = ""
	default:
		m.status = fmt.Sprintf("%d new, %d resolved", len(added), len(removed))
	}
	if m.cursor >= len(m.result.Suggestions) {
		m.cursor = max(0, len(m.result.Suggestions)-1)
	}
}

func (m compareModel) scheduleRecompute() tea.Cmd {
	seq := m.seq
	return tea.Tick(m.debounce, func(time.Time) tea.Msg { return recomputeMsg{seq: seq} })
}

func (m compareModel) applySelected() tea.Cmd {
	s := m.result.Suggestions[m.cursor]
	cleaned := m.cleaned()
	return func() tea.Msg {
		return appliedMsg{from: cleaned, cleaned: suggest.Apply(cleaned, s)}
	}
}

func (m compareModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		for i := range m.inputs {
			m.inputs[i].Width = max(20, msg.Width-16)
		}
		return m, nil

	case recomputeMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.recompute()
		return m, nil

	case appliedMsg:
		m.applying = false
		if m.cleaned() != msg.from {
			// Edited while applying; keep the typed text.
			logger.TUI("discarded apply result, cleaned changed to %q", m.cleaned())
			m.status = "apply skipped, name was edited"
			return m, nil
		}
		m.inputs[focusCleaned].SetValue(msg.cleaned)
		m.inputs[focusCleaned].CursorEnd()
		// Drop ticks scheduled before the apply.
		m.seq++
		m.recompute()
		logger.TUI("applied suggestion, cleaned=%q", msg.cleaned)
		return m, nil

	case searchDoneMsg:
		if msg.err != nil {
			m.status = "search failed: " + msg.err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.saveUIPreferences()
			return m, tea.Quit
		case "tab", "shift+tab":
			m.inputs[m.focus].Blur()
			m.focus = 1 - m.focus
			return m, m.inputs[m.focus].Focus()
		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "ctrl+n":
			if m.cursor < len(m.result.Suggestions)-1 {
				m.cursor++
			}
			return m, nil
		case "enter":
			if m.applying {
				return m, nil
			}
			// Settle any pending debounce so the selection matches the text.
			m.seq++
			m.recompute()
			if len(m.result.Suggestions) == 0 {
				return m, nil
			}
			m.applying = true
			return m, m.applySelected()
		case "ctrl+t":
			m.highlight = !m.highlight
			return m, nil
		case "ctrl+o":
			u := textmatch.WebSearchURL(m.cleaned())
			if u == "" {
				return m, nil
			}
			return m, func() tea.Msg { return searchDoneMsg{err: browser.OpenURL(u)} }
		}

		before := m.inputs[m.focus].Value()
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		if m.inputs[m.focus].Value() == before {
			return m, cmd
		}
		m.seq++
		return m, tea.Batch(cmd, m.scheduleRecompute())
	}
	return m, nil
}

func (m compareModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.header.Render("catfill: compare item names"))
	b.WriteString("\n\n")

	b.WriteString(m.styles.label.Render("Original ") + m.inputs[focusOriginal].View() + "\n")
	b.WriteString(m.styles.label.Render("Cleaned  ") + m.inputs[focusCleaned].View() + "\n\n")

	var body strings.Builder
	switch {
	case m.result.Equivalent:
		body.WriteString(m.styles.ok.Render("✅ Same words in a different order"))
	case len(m.result.Suggestions) == 0:
		body.WriteString(m.styles.ok.Render("✅ No suggestions"))
	default:
		if m.highlight && len(m.result.Missing) > 0 {
			body.WriteString(suggest.Highlight(m.original(), m.result.Missing, func(w string) string {
				return m.styles.missing.Render(w)
			}))
			body.WriteString("\n\n")
		}
		for i, s := range m.result.Suggestions {
			line := s.Label()
			if i == m.cursor {
				body.WriteString(m.styles.selected.Render("> " + line))
			} else {
				body.WriteString("  " + line)
			}
			if i < len(m.result.Suggestions)-1 {
				body.WriteString("\n")
			}
		}
	}
	b.WriteString(m.styles.box.Render(body.String()))
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(m.styles.muted.Render(m.status) + "\n")
	}
	b.WriteString(m.styles.help.Render(clip("tab switch field • ↑/↓ select • enter apply • ctrl+t highlight • ctrl+o web search • esc quit", m.width)))
	return b.String()
}

func (m compareModel) saveUIPreferences() {
	prefs := usercfg.GetUIPrefs()
	prefs.LastOriginal = m.original()
	prefs.LastCleaned = m.cleaned()
	prefs.NoHighlight = !m.highlight

	// best-effort
	if err := usercfg.SaveUIPrefs(prefs); err != nil {
		logger.Debug("could not save UI preferences: %v", err)
	}
}

// StartCompare runs the interactive comparer and prints the final cleaned name.
func StartCompare(a *app, original, cleaned string) error {
	p := tea.NewProgram(initialCompareModel(a, original, cleaned), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return err
	}
	if cm, ok := finalModel.(compareModel); ok {
		fmt.Println(cm.cleaned())
	}
	return nil
}

// clip shortens s to w columns; w <= 0 leaves it alone.
func clip(s string, w int) string {
	r := []rune(s)
	if w <= 0 || len(r) <= w {
		return s
	}
	if w <= 3 {
		return string(r[:w])
	}
	return string(r[:w-3]) + "..."
}
