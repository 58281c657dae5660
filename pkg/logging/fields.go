package logging

import "strings"

// Field represents a log field
type Field interface {
	Apply(entry *LogEntry)
}

type anyField struct {
	key   string
	value any
}

func (f anyField) Apply(entry *LogEntry) {
	entry.Fields[f.key] = f.value
}

type errorField struct {
	err error
}

func (f errorField) Apply(entry *LogEntry) {
	if f.err != nil {
		entry.Error = f.err.Error()
	}
}

type componentField string

func (f componentField) Apply(entry *LogEntry) {
	entry.Component = string(f)
}

type requestIDField string

func (f requestIDField) Apply(entry *LogEntry) {
	entry.RequestID = string(f)
}

// String creates a string field
func String(key, value string) Field {
	return anyField{key: key, value: value}
}

// Strings creates a field holding a comma-joined list
func Strings(key string, values []string) Field {
	return anyField{key: key, value: strings.Join(values, ",")}
}

// Int creates an integer field
func Int(key string, value int) Field {
	return anyField{key: key, value: value}
}

// Float creates a float field
func Float(key string, value float64) Field {
	return anyField{key: key, value: value}
}

// Bool creates a boolean field
func Bool(key string, value bool) Field {
	return anyField{key: key, value: value}
}

// Error creates an error field
func Error(err error) Field {
	return errorField{err: err}
}

// Component creates a component field
func Component(component string) Field {
	return componentField(component)
}

// RequestID creates a request ID field
func RequestID(requestID string) Field {
	return requestIDField(requestID)
}
