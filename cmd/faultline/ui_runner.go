package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"faultline/internal/driver"
	"faultline/internal/progress"
	"faultline/internal/ui"
)

type dirOutcome struct {
	results []*driver.Result
	err     error
}

// analyzeDirWithUI runs AnalyzeDir while a Bubble Tea program renders its
// progress events. files is the list the view starts with.
func analyzeDirWithUI(ctx context.Context, title, dir string, files []string, opts driver.Options) ([]*driver.Result, error) {
	events := make(chan progress.Event, 256)
	outcomeCh := make(chan dirOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = progress.Tee(opts.Progress, progress.ChannelSink{Ch: events})
		res, err := driver.AnalyzeDir(ctx, dir, optsCopy)
		outcomeCh <- dirOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	// вид мог закрыться раньше (ctrl+c): дочитываем события
	for range events {
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
