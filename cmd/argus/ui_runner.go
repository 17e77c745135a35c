package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"argus/internal/engine"
	"argus/internal/project"
	"argus/internal/ui"
)

type analysisOutcome struct {
	result *engine.Result
	err    error
}

func runAnalysisWithUI(ctx context.Context, title string, ruleNames []string, p *project.Project, opts engine.Options) (*engine.Result, error) {
	events := make(chan engine.Event, 256)
	outcomeCh := make(chan analysisOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Sink = engine.ChannelSink{Ch: events}
		res, err := engine.Run(ctx, p, optsCopy)
		outcomeCh <- analysisOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, ruleNames, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
