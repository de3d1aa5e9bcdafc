// Package testutil provides common test utilities for MedReg-Intelligence.
package testutil

import (
	"sync"

	"github.com/turtacn/MedReg-Intelligence/internal/infrastructure/monitoring/logging"
)

// MockLogger implements logging.Logger and records every entry so tests can
// assert on logging behavior.
type MockLogger struct {
	mu       sync.Mutex
	messages []LogMessage
}

// LogMessage is a single captured log entry.
type LogMessage struct {
	Level   string
	Message string
	Fields  []logging.Field
}

func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) log(level, msg string, fields []logging.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, LogMessage{Level: level, Message: msg, Fields: fields})
}

func (m *MockLogger) Debug(msg string, fields ...logging.Field) { m.log("debug", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...logging.Field)  { m.log("info", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...logging.Field)  { m.log("warn", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...logging.Field) { m.log("error", msg, fields) }
func (m *MockLogger) Fatal(msg string, fields ...logging.Field) { m.log("fatal", msg, fields) }

func (m *MockLogger) With(_ ...logging.Field) logging.Logger { return m }
func (m *MockLogger) Named(_ string) logging.Logger          { return m }

// Messages returns a copy of all captured entries.
func (m *MockLogger) Messages() []LogMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LogMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// MessagesAt returns the captured entries at the given level.
func (m *MockLogger) MessagesAt(level string) []LogMessage {
	var out []LogMessage
	for _, msg := range m.Messages() {
		if msg.Level == level {
			out = append(out, msg)
		}
	}
	return out
}
