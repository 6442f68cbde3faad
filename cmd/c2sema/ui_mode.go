package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"c2sema/internal/driver"
	"c2sema/internal/project"
	"c2sema/internal/ui"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// shouldUseTUI решает, показывать ли прогресс. В auto-режиме нужен терминал
// на stderr, и вывод не должен уходить в JSON.
func shouldUseTUI(mode uiMode, format string) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return format != "json" && isTerminal(os.Stderr)
	}
}

type checkOutcome struct {
	result *driver.Result
	err    error
}

// runCheckWithUI runs Check in the background while a progress view renders
// on stderr.
func runCheckWithUI(ctx context.Context, m *project.Manifest, opts driver.Options) (*driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.Check(ctx, m, opts)
		outcomeCh <- checkOutcome{result: res, err: err}
		close(events)
	}()

	modules := make([]string, len(m.Modules))
	for i, mc := range m.Modules {
		modules[i] = mc.Name
	}
	model := ui.NewProgressModel(m.Project.Name, modules, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	// если UI упал раньше времени, Check не должен застрять на полном канале
	for range events {
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
