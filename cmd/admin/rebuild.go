package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/programme-lv/autograde/assignment"
	"github.com/programme-lv/autograde/bundle"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9b59b6"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#2ecc71"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e74c3c"))
)

type rebuilder interface {
	Rebuild(ctx context.Context, assignmentID int64) (bundle.Result, error)
}

func newRebuildBundlesCmd() *cobra.Command {
	var assignmentID int64
	var yes bool
	cmd := &cobra.Command{
		Use:   "rebuild-bundles",
		Short: "Regenerate grading bundles, e.g. after installing a new runner template",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			var targets []assignment.Assignment
			if assignmentID != 0 {
				a, err := e.srvcs.Assignments.Get(cmd.Context(), assignmentID)
				if err != nil {
					return err
				}
				targets = append(targets, a)
			} else {
				targets, err = e.srvcs.Assignments.ListAll(cmd.Context())
				if err != nil {
					return err
				}
			}
			if len(targets) == 0 {
				log.Info().Msg("no assignments to rebuild")
				return nil
			}

			if yes {
				return rebuildPlain(cmd.Context(), e.srvcs.Assignments, targets)
			}
			m := newRebuildModel(cmd.Context(), e.srvcs.Assignments, targets)
			final, err := tea.NewProgram(m).Run()
			if err != nil {
				return err
			}
			if fm, ok := final.(rebuildModel); ok && fm.failed > 0 {
				return fmt.Errorf("%d of %d bundles failed", fm.failed, len(targets))
			}
			return nil
		},
	}
	cmd.Flags().Int64VarP(&assignmentID, "assignment", "a", 0, "only rebuild this assignment")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation and print plain log lines")
	return cmd
}

func rebuildPlain(ctx context.Context, r rebuilder, targets []assignment.Assignment) error {
	failed := 0
	for _, a := range targets {
		res, err := r.Rebuild(ctx, a.ID)
		if err != nil {
			failed++
			log.Error().Err(err).Int64("assignment_id", a.ID).Msg("failed to rebuild bundle")
			continue
		}
		ev := log.Info().Int64("assignment_id", a.ID).Str("archive", res.ArchiveKey).Strs("entries", res.Entries)
		if len(res.Skipped) > 0 {
			ev = ev.Strs("skipped", res.Skipped)
		}
		ev.Msg("rebuilt bundle")
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d bundles failed", failed, len(targets))
	}
	return nil
}

type rebuildState int

const (
	rebuildStateConfirm rebuildState = iota
	rebuildStateRunning
	rebuildStateDone
)

type rebuiltMsg struct {
	title string
	res   bundle.Result
	err   error
}

type rebuildModel struct {
	ctx     context.Context
	r       rebuilder
	targets []assignment.Assignment
	state   rebuildState
	spinner spinner.Model
	next    int
	lines   []string
	failed  int
}

func newRebuildModel(ctx context.Context, r rebuilder, targets []assignment.Assignment) rebuildModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#3498db"))
	return rebuildModel{ctx: ctx, r: r, targets: targets, spinner: s}
}

func (m rebuildModel) Init() tea.Cmd {
	return nil
}

func (m rebuildModel) rebuildNext() tea.Cmd {
	a := m.targets[m.next]
	return func() tea.Msg {
		res, err := m.r.Rebuild(m.ctx, a.ID)
		return rebuiltMsg{title: a.Title, res: res, err: err}
	}
}

func (m rebuildModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.state {
	case rebuildStateConfirm:
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "y", "Y":
				m.state = rebuildStateRunning
				return m, tea.Batch(m.spinner.Tick, m.rebuildNext())
			case "n", "N", "q":
				return m, tea.Quit
			}
		}
		return m, nil

	case rebuildStateRunning:
		switch msg := msg.(type) {
		case rebuiltMsg:
			if msg.err != nil {
				m.failed++
				m.lines = append(m.lines, errStyle.Render("✗ ")+msg.title+": "+msg.err.Error())
			} else {
				line := okStyle.Render("✓ ") + msg.title + " " + valueStyle.Render(msg.res.ArchiveKey)
				if len(msg.res.Skipped) > 0 {
					line += fmt.Sprintf(" (skipped %v)", msg.res.Skipped)
				}
				m.lines = append(m.lines, line)
			}
			m.next++
			if m.next == len(m.targets) {
				m.state = rebuildStateDone
				return m, tea.Quit
			}
			return m, m.rebuildNext()
		case spinner.TickMsg:
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m rebuildModel) View() string {
	s := ""
	switch m.state {
	case rebuildStateConfirm:
		s += fmt.Sprintf("Rebuild %s bundle(s)? (y/n)\n", valueStyle.Render(fmt.Sprint(len(m.targets))))
	case rebuildStateRunning:
		for _, l := range m.lines {
			s += l + "\n"
		}
		s += fmt.Sprintf("%s Rebuilding %s...\n", m.spinner.View(), m.targets[m.next].Title)
	case rebuildStateDone:
		for _, l := range m.lines {
			s += l + "\n"
		}
		s += fmt.Sprintf("Done, %d failed.\n", m.failed)
	}
	return s
}
