package database

import (
	"fmt"
	"sync"
)

type mockLogEntry struct {
	Message string
	Fields  map[string]interface{}
}

type mockLogRecord struct {
	mu    sync.RWMutex
	info  []mockLogEntry
	errs  []mockLogEntry
	warn  []mockLogEntry
	debug []mockLogEntry
}

// mockLogger records entries; loggers derived with WithFields share one record
type mockLogger struct {
	record *mockLogRecord
	fields map[string]interface{}
}

func newMockLogger() *mockLogger {
	return &mockLogger{record: &mockLogRecord{}, fields: map[string]interface{}{}}
}

func (m *mockLogger) merge(fields map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(m.fields)+len(fields))
	for k, v := range m.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return merged
}

func (m *mockLogger) add(list *[]mockLogEntry, msg string, fields map[string]interface{}) {
	m.record.mu.Lock()
	defer m.record.mu.Unlock()
	*list = append(*list, mockLogEntry{Message: msg, Fields: m.merge(fields)})
}

func (m *mockLogger) LogInfo(msg string, fields map[string]interface{}) {
	m.add(&m.record.info, msg, fields)
}

func (m *mockLogger) LogError(err error, msg string) error {
	fields := map[string]interface{}{}
	if err != nil {
		fields["error"] = err.Error()
	}
	m.add(&m.record.errs, msg, fields)
	return err
}

func (m *mockLogger) LogErrorf(err error, format string, args ...interface{}) error {
	return m.LogError(err, fmt.Sprintf(format, args...))
}

func (m *mockLogger) LogFatal(err error, context string) {
	m.LogError(err, "FATAL: "+context)
}

func (m *mockLogger) LogDebug(msg string, fields map[string]interface{}) {
	m.add(&m.record.debug, msg, fields)
}

func (m *mockLogger) LogWarn(msg string, fields map[string]interface{}) {
	m.add(&m.record.warn, msg, fields)
}

func (m *mockLogger) WithFields(fields map[string]interface{}) Logger {
	return &mockLogger{record: m.record, fields: m.merge(fields)}
}

func (m *mockLogger) WithRequestID(requestID string) Logger {
	return m.WithFields(map[string]interface{}{"request_id": requestID})
}

func (m *mockLogger) WithSessionID(sessionID string) Logger {
	return m.WithFields(map[string]interface{}{"session_id": sessionID})
}

func (m *mockLogger) entries(list *[]mockLogEntry) []mockLogEntry {
	m.record.mu.RLock()
	defer m.record.mu.RUnlock()
	return append([]mockLogEntry(nil), (*list)...)
}

func (m *mockLogger) GetInfoMessages() []mockLogEntry  { return m.entries(&m.record.info) }
func (m *mockLogger) GetErrorMessages() []mockLogEntry { return m.entries(&m.record.errs) }
func (m *mockLogger) GetWarnMessages() []mockLogEntry  { return m.entries(&m.record.warn) }
func (m *mockLogger) GetDebugMessages() []mockLogEntry { return m.entries(&m.record.debug) }

func (m *mockLogger) ClearMessages() {
	m.record.mu.Lock()
	defer m.record.mu.Unlock()
	m.record.info, m.record.errs, m.record.warn, m.record.debug = nil, nil, nil, nil
}
