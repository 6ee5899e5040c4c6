// Package result implements the diagnostic tree returned by the rule
// engine.
//
// A Result owns zero or more direct messages and zero or more child Results.
// Every aggregate query (counts, validity, message collection) walks the tree
// on demand; nothing is cached, so a Result may be extended after it has been
// queried. A Result is created fresh for every engine invocation and is not
// safe for concurrent mutation.
package result

import (
	"fmt"
	"strings"

	"github.com/vk/rulegridgo/internal/entity"
)

// Message is a single severity-tagged diagnostic.
type Message struct {
	Text     string
	Severity Severity
	// Subjects are the entity nodes the message is about, most specific first.
	Subjects []entity.Node
	// Params carries structured details, e.g. "undefinedAttributes".
	Params map[string]any
}

// SubjectIDs returns the identifiers of the message subjects.
func (m *Message) SubjectIDs() []string {
	ids := make([]string, 0, len(m.Subjects))
	for _, s := range m.Subjects {
		if s != nil {
			ids = append(ids, s.ID())
		}
	}
	return ids
}

// With attaches a structured detail and returns the message for chaining.
func (m *Message) With(key string, value any) *Message {
	if m.Params == nil {
		m.Params = make(map[string]any)
	}
	m.Params[key] = value
	return m
}

func (m *Message) String() string {
	ids := m.SubjectIDs()
	if len(ids) == 0 {
		return fmt.Sprintf("%s: %s", m.Severity, m.Text)
	}
	return fmt.Sprintf("%s: %s [%s]", m.Severity, m.Text, strings.Join(ids, ", "))
}

// Result is a node of the diagnostic tree.
type Result struct {
	messages []*Message
	children []*Result
}

// New returns an empty Result.
func New() *Result {
	return &Result{}
}

// Add appends a direct message and returns it so details can be attached.
func (r *Result) Add(sev Severity, text string, subjects ...entity.Node) *Message {
	m := &Message{Text: text, Severity: sev, Subjects: subjects}
	r.messages = append(r.messages, m)
	return m
}

// AddMessage appends an existing message.
func (r *Result) AddMessage(m *Message) {
	if m != nil {
		r.messages = append(r.messages, m)
	}
}

// Errorf appends an Error message about subject.
func (r *Result) Errorf(subject entity.Node, format string, args ...any) *Message {
	return r.Add(Error, fmt.Sprintf(format, args...), nonNil(subject)...)
}

// Warnf appends a Warning message about subject.
func (r *Result) Warnf(subject entity.Node, format string, args ...any) *Message {
	return r.Add(Warning, fmt.Sprintf(format, args...), nonNil(subject)...)
}

// Infof appends an Info message about subject.
func (r *Result) Infof(subject entity.Node, format string, args ...any) *Message {
	return r.Add(Info, fmt.Sprintf(format, args...), nonNil(subject)...)
}

func nonNil(n entity.Node) []entity.Node {
	if n == nil {
		return nil
	}
	return []entity.Node{n}
}

// Messages returns the direct messages of this node only.
func (r *Result) Messages() []*Message {
	return append([]*Message(nil), r.messages...)
}

// Children returns the direct child Results.
func (r *Result) Children() []*Result {
	return append([]*Result(nil), r.children...)
}

// Merge appends every non-nil, non-empty argument as a child. Calling it
// without arguments, or only with nil or empty Results, changes nothing.
func (r *Result) Merge(others ...*Result) *Result {
	for _, o := range others {
		if o == nil || o == r || o.IsEmpty() {
			continue
		}
		r.children = append(r.children, o)
	}
	return r
}

// IsEmpty reports whether the tree holds no message at all.
func (r *Result) IsEmpty() bool {
	if r == nil {
		return true
	}
	if len(r.messages) > 0 {
		return false
	}
	for _, c := range r.children {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// IsValid reports whether the tree holds no Error message.
func (r *Result) IsValid() bool {
	return r.Count(Error) == 0
}

// Count returns the number of messages of the given severity in the whole tree.
func (r *Result) Count(sev Severity) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, m := range r.messages {
		if m.Severity == sev {
			n++
		}
	}
	for _, c := range r.children {
		n += c.Count(sev)
	}
	return n
}

func (r *Result) ErrorCount() int   { return r.Count(Error) }
func (r *Result) WarningCount() int { return r.Count(Warning) }
func (r *Result) InfoCount() int    { return r.Count(Info) }

// OutputMessages collects the messages of one severity across the whole
// tree, depth first, direct messages before children.
func (r *Result) OutputMessages(sev Severity) []*Message {
	var out []*Message
	r.walk(func(m *Message) {
		if m.Severity == sev {
			out = append(out, m)
		}
	})
	return out
}

// GroupedMessages collects all messages of the tree keyed by severity.
func (r *Result) GroupedMessages() map[Severity][]*Message {
	out := make(map[Severity][]*Message)
	r.walk(func(m *Message) {
		out[m.Severity] = append(out[m.Severity], m)
	})
	return out
}

// MessagesAtLeast collects the messages whose severity is min or higher,
// keyed by severity.
func (r *Result) MessagesAtLeast(min Severity) map[Severity][]*Message {
	out := make(map[Severity][]*Message)
	r.walk(func(m *Message) {
		if m.Severity >= min {
			out[m.Severity] = append(out[m.Severity], m)
		}
	})
	return out
}

// All returns every message of the tree in traversal order.
func (r *Result) All() []*Message {
	var out []*Message
	r.walk(func(m *Message) { out = append(out, m) })
	return out
}

func (r *Result) walk(fn func(*Message)) {
	if r == nil {
		return
	}
	for _, m := range r.messages {
		fn(m)
	}
	for _, c := range r.children {
		c.walk(fn)
	}
}

// Mark records how far a Result has grown.
type Mark struct {
	messages int
	children int
}

// Snapshot returns the current extent of r.
func (r *Result) Snapshot() Mark {
	return Mark{messages: len(r.messages), children: len(r.children)}
}

// Since returns a new Result holding only what was added to r after m.
// The returned tree shares its children with r.
func (r *Result) Since(m Mark) *Result {
	out := New()
	if m.messages < len(r.messages) {
		out.messages = append(out.messages, r.messages[m.messages:]...)
	}
	if m.children < len(r.children) {
		out.children = append(out.children, r.children[m.children:]...)
	}
	return out
}
