package driver

import "time"

// Stage describes a high-level pipeline phase of one file's rewrite.
type Stage string

const (
	// StageLoad is reading and normalizing the file from disk.
	StageLoad Stage = "load"
	// StageParse is building the syntax tree.
	StageParse Stage = "parse"
	// StageRewrite is locating and folding call sites.
	StageRewrite Stage = "rewrite"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the file is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the file is currently being processed.
	StatusWorking Status = "working"
	// StatusDone indicates the file finished.
	StatusDone Status = "done"
	// StatusCached indicates the result was served from the disk cache.
	StatusCached Status = "cached"
	// StatusSkipped indicates the file never mentions the target name.
	StatusSkipped Status = "skipped"
	// StatusError indicates the file failed.
	StatusError Status = "error"
)

// Event reports progress for a file (or for the overall run when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
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

type nopSink struct{}

func (nopSink) OnEvent(Event) {}
