package domain

import (
	"net/mail"
	"strings"
)

// Message is an email message flowing through a pipeline: a header block
// plus an opaque body. Handlers mutate it in place; callers that need the
// pristine original must Clone before processing.
type Message struct {
	ID      string              `json:"id"`
	Headers map[string][]string `json:"headers"`
	Body    string              `json:"body"`
}

// NewMessage creates an empty message with the given id.
func NewMessage(id string) *Message {
	return &Message{ID: id, Headers: make(map[string][]string)}
}

func canonical(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Get returns the first value of a header, or "" if absent.
func (m *Message) Get(key string) string {
	vals := m.Headers[canonical(key)]
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

// Set replaces all values of a header.
func (m *Message) Set(key, value string) {
	if m.Headers == nil {
		m.Headers = make(map[string][]string)
	}
	m.Headers[canonical(key)] = []string{value}
}

// Add appends a header value without disturbing existing ones.
func (m *Message) Add(key, value string) {
	if m.Headers == nil {
		m.Headers = make(map[string][]string)
	}
	k := canonical(key)
	m.Headers[k] = append(m.Headers[k], value)
}

// Has reports whether the header is present.
func (m *Message) Has(key string) bool {
	return len(m.Headers[canonical(key)]) > 0
}

// Subject returns the subject header, or "(no subject)" when missing.
func (m *Message) Subject() string {
	if s := m.Get("subject"); s != "" {
		return s
	}
	return "(no subject)"
}

// Sender returns the bare address of the message originator, preferring
// Sender over From. Returns "" if neither parses.
func (m *Message) Sender() string {
	for _, key := range []string{"sender", "from"} {
		raw := m.Get(key)
		if raw == "" {
			continue
		}
		if addr, err := mail.ParseAddress(raw); err == nil {
			return addr.Address
		}
		return strings.TrimSpace(raw)
	}
	return ""
}

// Clone returns a deep copy of the message.
func (m *Message) Clone() *Message {
	cp := &Message{ID: m.ID, Body: m.Body, Headers: make(map[string][]string, len(m.Headers))}
	for k, vals := range m.Headers {
		cp.Headers[k] = append([]string(nil), vals...)
	}
	return cp
}
