// Package events defines the observer through which an update session reports
// log lines, progress and failures to its caller.
package events

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Kind labels what a progress update counts.
type Kind string

const (
	KindUpdate       Kind = "update"
	KindGameDownload Kind = "game-download"
)

// Progress is a single progress notification.
type Progress struct {
	Current int  `json:"current"`
	Total   int  `json:"total"`
	Kind    Kind `json:"kind"`
}

// Sink receives session events. Implementations must be safe for concurrent
// use; the download executor reports from several goroutines.
type Sink interface {
	Log(text string)
	Warn(text string)
	Progress(p Progress)
	Error(text string)
}

// Funcs adapts a set of callbacks to a Sink. Nil callbacks are ignored; a nil
// OnWarn falls back to OnLog with a "WARNING: " prefix.
type Funcs struct {
	OnLog      func(text string)
	OnWarn     func(text string)
	OnProgress func(p Progress)
	OnError    func(text string)
}

func (f Funcs) Log(text string) {
	if f.OnLog != nil {
		f.OnLog(text)
	}
}

func (f Funcs) Warn(text string) {
	switch {
	case f.OnWarn != nil:
		f.OnWarn(text)
	case f.OnLog != nil:
		f.OnLog("WARNING: " + text)
	}
}

func (f Funcs) Progress(p Progress) {
	if f.OnProgress != nil {
		f.OnProgress(p)
	}
}

func (f Funcs) Error(text string) {
	if f.OnError != nil {
		f.OnError(text)
	}
}

// Discard drops every event.
var Discard Sink = Funcs{}

type multi []Sink

// Multi fans events out to every sink in order.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

func (m multi) Log(text string) {
	for _, s := range m {
		s.Log(text)
	}
}

func (m multi) Warn(text string) {
	for _, s := range m {
		s.Warn(text)
	}
}

func (m multi) Progress(p Progress) {
	for _, s := range m {
		s.Progress(p)
	}
}

func (m multi) Error(text string) {
	for _, s := range m {
		s.Error(text)
	}
}

type logrusSink struct {
	entry *log.Entry
}

// Logrus mirrors events into a logrus entry.
func Logrus(entry *log.Entry) Sink {
	return logrusSink{entry: entry}
}

func (l logrusSink) Log(text string)  { l.entry.Info(text) }
func (l logrusSink) Warn(text string) { l.entry.Warn(text) }
func (l logrusSink) Error(text string) { l.entry.Error(text) }

func (l logrusSink) Progress(p Progress) {
	l.entry.WithFields(log.Fields{"current": p.Current, "total": p.Total, "kind": p.Kind}).Debug("progress")
}

// Recorder captures events in memory.
type Recorder struct {
	mu       sync.Mutex
	logs     []string
	warnings []string
	progress []Progress
	errors   []string
}

func (r *Recorder) Log(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, text)
}

func (r *Recorder) Warn(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, text)
}

func (r *Recorder) Progress(p Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, p)
}

func (r *Recorder) Error(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, text)
}

// Logs returns a copy of the recorded log lines.
func (r *Recorder) Logs() []string { return r.snapshot(&r.logs) }

// Warnings returns a copy of the recorded warnings.
func (r *Recorder) Warnings() []string { return r.snapshot(&r.warnings) }

// Errors returns a copy of the recorded errors.
func (r *Recorder) Errors() []string { return r.snapshot(&r.errors) }

// ProgressEvents returns a copy of the recorded progress updates.
func (r *Recorder) ProgressEvents() []Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Progress(nil), r.progress...)
}

func (r *Recorder) snapshot(s *[]string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), (*s)...)
}
