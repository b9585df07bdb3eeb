package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"mica/internal/driver"
	"mica/internal/source"
	"mica/internal/ui"
)

type checkOutcome struct {
	fset    *source.FileSet
	results []driver.UnitResult
	err     error
}

// runCheckWithUI runs the directory check in a goroutine while the
// progress view owns the terminal. The event channel closing is what
// terminates the UI.
func runCheckWithUI(ctx context.Context, target string, files []string, opts driver.Options) (*source.FileSet, []driver.UnitResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		fset, results, err := driver.CheckDir(ctx, target, optsCopy)
		outcomeCh <- checkOutcome{fset: fset, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(fmt.Sprintf("checking %s", target), files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.fset, outcome.results, uiErr
	}
	return outcome.fset, outcome.results, outcome.err
}
