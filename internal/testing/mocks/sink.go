// Package mocks provides shared test doubles for testtask packages.
package mocks

import (
	"fmt"
	"strings"
	"sync"

	"github.com/AndreyAkinshin/testtask/internal/diag"
)

// Entry is one recorded diagnostic.
type Entry struct {
	Channel string
	Level   diag.Level
	Message string
}

// String renders the entry as "channel/level: message" for test failure output.
func (e Entry) String() string {
	if e.Channel == "" {
		return fmt.Sprintf("%s: %s", e.Level, e.Message)
	}
	return fmt.Sprintf("%s/%s: %s", e.Channel, e.Level, e.Message)
}

type sinkLog struct {
	mu      sync.Mutex
	entries []Entry
}

// Sink implements diag.Sink and records every message in emission order.
// Sub-channels share the parent's log so ordering across channels is preserved.
type Sink struct {
	log     *sinkLog
	channel string
}

// NewSink creates an empty recording sink.
func NewSink() *Sink {
	return &Sink{log: &sinkLog{}}
}

func (s *Sink) record(l diag.Level, format string, args ...any) {
	s.log.mu.Lock()
	defer s.log.mu.Unlock()
	s.log.entries = append(s.log.entries, Entry{
		Channel: s.channel,
		Level:   l,
		Message: fmt.Sprintf(format, args...),
	})
}

func (s *Sink) Trace(format string, args ...any) { s.record(diag.LevelTrace, format, args...) }
func (s *Sink) Config(format string, args ...any) { s.record(diag.LevelConfig, format, args...) }
func (s *Sink) Info(format string, args ...any) { s.record(diag.LevelInfo, format, args...) }
func (s *Sink) Warning(format string, args ...any) { s.record(diag.LevelWarning, format, args...) }
func (s *Sink) Severe(format string, args ...any) { s.record(diag.LevelSevere, format, args...) }

// Sub returns a sink recording into the same log under the named channel.
func (s *Sink) Sub(name string) diag.Sink {
	channel := name
	if s.channel != "" {
		channel = s.channel + "." + name
	}
	return &Sink{log: s.log, channel: channel}
}

// Entries returns a snapshot of all recorded entries.
func (s *Sink) Entries() []Entry {
	s.log.mu.Lock()
	defer s.log.mu.Unlock()
	return append([]Entry(nil), s.log.entries...)
}

// OnChannel returns the entries recorded on the named channel.
func (s *Sink) OnChannel(channel string) []Entry {
	var out []Entry
	for _, e := range s.Entries() {
		if e.Channel == channel {
			out = append(out, e)
		}
	}
	return out
}

// AtLevel returns the entries recorded at level on any channel.
func (s *Sink) AtLevel(l diag.Level) []Entry {
	var out []Entry
	for _, e := range s.Entries() {
		if e.Level == l {
			out = append(out, e)
		}
	}
	return out
}

// Contains reports whether any entry at level contains substr.
func (s *Sink) Contains(l diag.Level, substr string) bool {
	for _, e := range s.AtLevel(l) {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// Dump renders all entries, one per line.
func (s *Sink) Dump() string {
	var b strings.Builder
	for _, e := range s.Entries() {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return b.String()
}
