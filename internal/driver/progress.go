package driver

import "time"

// Stage describes a high-level step of Check.
type Stage string

const (
	// StageLoad is reading and decoding interchange files.
	StageLoad Stage = "load"
	// StageAnalyse is the phase sequence of one module.
	StageAnalyse Stage = "analyse"
	// StageUnused is the unused-declaration audit.
	StageUnused Stage = "unused"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the module is waiting for analysis.
	StatusQueued Status = "queued"
	// StatusWorking indicates the module is being processed.
	StatusWorking Status = "working"
	// StatusDone indicates the module passed.
	StatusDone Status = "done"
	// StatusError indicates the module reported errors.
	StatusError Status = "error"
	// StatusSkipped marks modules never analysed because an earlier one failed.
	StatusSkipped Status = "skipped"
)

// Event reports progress for a module (or for the whole run when Module is empty).
type Event struct {
	Module  string
	Stage   Stage
	Status  Status
	Errors  int
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

type progress struct {
	sink ProgressSink
}

func (p progress) emit(evt Event) {
	if p.sink != nil {
		p.sink.OnEvent(evt)
	}
}
