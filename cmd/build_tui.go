package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tspack/tspack/pkg/compiler"
)

// tailLines is how much compiler output the progress UI keeps visible.
const tailLines = 8

type eventsClosedMsg struct{}

type buildModel struct {
	spinner spinner.Model
	events  <-chan compiler.Event
	lines   []string
	result  *compiler.Event
}

func newBuildModel(events <-chan compiler.Event) buildModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = headerStyle
	return buildModel{spinner: sp, events: events}
}

func waitForEvent(events <-chan compiler.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return ev
	}
}

func (m buildModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

func (m buildModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil

	case compiler.Event:
		switch msg.Type {
		case "output":
			m.lines = append(m.lines, msg.OutputLine)
			if len(m.lines) > tailLines {
				m.lines = m.lines[len(m.lines)-tailLines:]
			}
		case "finish":
			ev := msg
			m.result = &ev
			return m, tea.Quit
		}
		return m, waitForEvent(m.events)

	case eventsClosedMsg:
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m buildModel) View() string {
	if m.result != nil {
		return ""
	}
	view := fmt.Sprintf("%s compiling with tsc...\n", m.spinner.View())
	for _, line := range m.lines {
		view += faintStyle.Render(line) + "\n"
	}
	return view
}

// runBuildTUI streams a compiler run into the progress UI. On failure the
// full compiler output is replayed, followed by the usual blank separator
// line, so nothing the TUI swallowed is lost.
func runBuildTUI(ctx context.Context, bin string, opts compiler.Options) error {
	events := compiler.RunWithEvents(ctx, bin, opts)

	final, err := tea.NewProgram(newBuildModel(events)).Run()
	if err != nil {
		return fmt.Errorf("progress UI failed: %w", err)
	}

	m := final.(buildModel)
	if m.result == nil {
		return fmt.Errorf("build interrupted")
	}
	if m.result.Err != nil {
		os.Stdout.Write(m.result.Output)
		fmt.Println()
		return m.result.Err
	}
	return nil
}
