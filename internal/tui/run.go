package tui

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

var ErrInterrupted = errors.New("interrupted")

// Reporter forwards progress from the work function to the program.
type Reporter struct {
	program *tea.Program
}

func (r Reporter) Step(label string) {
	r.program.Send(StepMsg{Label: label})
}

func (r Reporter) Verify(current, total int) {
	r.program.Send(VerifyProgressMsg{Current: current, Total: total})
}

// Run shows progress on out while work runs. Work is cancelled and awaited
// when the program is interrupted.
func Run(ctx context.Context, out io.Writer, location string, work func(ctx context.Context, r Reporter) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(NewModel(location), tea.WithOutput(out), tea.WithInput(nil), tea.WithContext(ctx))

	result := make(chan error, 1)
	go func() {
		err := work(ctx, Reporter{program: program})
		result <- err
		program.Send(DoneMsg{Err: err})
	}()

	final, runErr := program.Run()
	if runErr != nil {
		cancel()
		if err := <-result; err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return ErrInterrupted
	}

	m, ok := final.(Model)
	if !ok || !m.Finished {
		cancel()
		<-result
		return ErrInterrupted
	}
	return m.Err
}
