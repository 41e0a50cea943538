package config

import (
	"github.com/rs/zerolog"

	"github.com/nauticalab/propbind/pkg/problems"
)

// Monitor receives every error and warning as it is produced.
type Monitor interface {
	OnError(problems.Message)
	OnWarning(problems.Message)
}

// NopMonitor discards all messages.
type NopMonitor struct{}

func (NopMonitor) OnError(problems.Message)   {}
func (NopMonitor) OnWarning(problems.Message) {}

// MonitorFuncs adapts a pair of functions to Monitor. Nil functions are skipped.
type MonitorFuncs struct {
	Error   func(problems.Message)
	Warning func(problems.Message)
}

func (m MonitorFuncs) OnError(msg problems.Message) {
	if m.Error != nil {
		m.Error(msg)
	}
}

func (m MonitorFuncs) OnWarning(msg problems.Message) {
	if m.Warning != nil {
		m.Warning(msg)
	}
}

// LogMonitor writes messages to a zerolog logger.
type LogMonitor struct {
	logger zerolog.Logger
}

// NewLogMonitor returns a Monitor logging to logger.
func NewLogMonitor(logger zerolog.Logger) LogMonitor {
	return LogMonitor{logger: logger}
}

func (m LogMonitor) OnError(msg problems.Message) {
	m.event(m.logger.Error(), msg)
}

func (m LogMonitor) OnWarning(msg problems.Message) {
	m.event(m.logger.Warn(), msg)
}

func (m LogMonitor) event(e *zerolog.Event, msg problems.Message) {
	e.Str("kind", string(msg.Kind))
	if msg.Class != "" {
		e.Str("class", msg.Class)
	}
	if msg.Key != "" {
		e.Str("key", msg.Key)
	}
	e.Msg(msg.Text)
}
