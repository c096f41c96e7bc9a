package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"twfold/internal/driver"
	"twfold/internal/source"
	"twfold/internal/ui"
)

type rewriteOutcome struct {
	fileSet *source.FileSet
	results []driver.FileResult
	err     error
}

// runRewriteWithUI drives the rewrite in a goroutine while a Bubble Tea
// progress view consumes its events on the terminal.
func runRewriteWithUI(ctx context.Context, title, baseDir string, files []string, opts driver.Options) (*source.FileSet, []driver.FileResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan rewriteOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Sink = driver.ChannelSink{Ch: events}
		fs, results, err := driver.RewriteFiles(ctx, baseDir, files, optsCopy)
		outcomeCh <- rewriteOutcome{fileSet: fs, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.fileSet, outcome.results, uiErr
	}
	return outcome.fileSet, outcome.results, outcome.err
}
