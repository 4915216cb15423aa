// Package certgen drives an interactive progress bar, built as a
// bubbletea.Model, while a new certificate file is generated.
package certgen

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/progress"

	"iotscp/internal/infrastructure/certificate"
)

type progressMsg float64
type doneMsg struct{ err error }

type model struct {
	bar      progress.Model
	percent  float64
	path     string
	segments int
	segLen   int
	done     bool
	err      error
}

// Run generates a certificate at path with the given segment geometry,
// driving a terminal progress bar to completion.
func Run(path string, segments, segmentLength int) error {
	m := model{
		bar:      progress.New(progress.WithDefaultGradient()),
		path:     path,
		segments: segments,
		segLen:   segmentLength,
	}
	program := tea.NewProgram(m)
	updates := make(chan float64, 1)
	result := make(chan error, 1)

	go func() {
		err := certificate.Generate(path, segments, segmentLength, func(done, total int) {
			updates <- float64(done) / float64(total)
		})
		result <- err
		close(updates)
	}()

	go func() {
		for p := range updates {
			program.Send(progressMsg(p))
		}
		program.Send(doneMsg{err: <-result})
	}()

	finalModel, err := program.Run()
	if err != nil {
		return err
	}
	if fm, ok := finalModel.(model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.percent = float64(msg)
		return m, nil
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) View() string {
	if m.done {
		if m.err != nil {
			return fmt.Sprintf("Certificate generation failed: %v\n", m.err)
		}
		return fmt.Sprintf("Certificate written to %s (%d x %d bytes)\n", m.path, m.segments, m.segLen)
	}
	return fmt.Sprintf("Generating certificate...\n%s\n", m.bar.ViewAs(m.percent))
}
