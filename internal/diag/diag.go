// Package diag defines the structured diagnostics reported by every stage
// of the rule compiler.
package diag

import (
	"fmt"
	"sort"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/you-not-fish/islec/internal/syntax"
)

// Kind classifies a diagnostic.
type Kind int

const (
	Parse       Kind = iota // malformed source text
	Type                    // semantic error in types, terms or rules
	Unreachable             // a rule's own constraints contradict each other
	Overlap                 // rules of equal priority can match the same input
	Shadowed                // a higher-priority rule hides lower-priority ones
	IO                      // reading sources or configuration failed
)

var kindNames = [...]string{
	Parse:       "parse error",
	Type:        "type error",
	Unreachable: "unreachable rule",
	Overlap:     "overlap error",
	Shadowed:    "shadowed rule",
	IO:          "io error",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Fatal reports whether a diagnostic of kind k stops the pipeline.
func (k Kind) Fatal() bool {
	return k == Parse || k == Type || k == IO
}

// Advisory reports whether k is an overlap finding, which never drops rules.
func (k Kind) Advisory() bool {
	return k == Overlap || k == Shadowed
}

// ShadowedMsg is the message of every Shadowed diagnostic.
const ShadowedMsg = "more general higher-priority rule shadows other rules"

// Error is one diagnostic. Spans[0] is the primary location.
type Error struct {
	Kind  Kind
	Msg   string
	Spans []syntax.Span
	Err   error // underlying cause, for IO errors
}

// Errorf returns a diagnostic of kind k at pos.
func Errorf(k Kind, pos syntax.Pos, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...), Spans: []syntax.Span{syntax.SpanAt(pos)}}
}

// Pos returns the primary position, or NoPos.
func (e *Error) Pos() syntax.Pos {
	if len(e.Spans) == 0 {
		return syntax.NoPos
	}
	return e.Spans[0].From
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if !e.Pos().IsValid() {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Pos(), e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// List is an ordered collection of diagnostics.
type List []*Error

// Add appends e.
func (l *List) Add(e *Error) {
	*l = append(*l, e)
}

// Addf appends a diagnostic of kind k at pos.
func (l *List) Addf(k Kind, pos syntax.Pos, format string, args ...interface{}) {
	l.Add(Errorf(k, pos, format, args...))
}

// Count returns the number of diagnostics of kind k.
func (l List) Count(k Kind) int {
	n := 0
	for _, e := range l {
		if e.Kind == k {
			n++
		}
	}
	return n
}

// HasFatal reports whether l holds any diagnostic that stops compilation.
func (l List) HasFatal() bool {
	for _, e := range l {
		if e.Kind.Fatal() {
			return true
		}
	}
	return false
}

// Filter returns the diagnostics whose kind is one of kinds.
func (l List) Filter(kinds ...Kind) List {
	var out List
	for _, e := range l {
		for _, k := range kinds {
			if e.Kind == k {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// Sort orders l by primary position, keeping report order for ties.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		return l[i].Pos().Compare(l[j].Pos()) < 0
	})
}

// Err returns l as an aggregate error, or nil if l is empty.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	errs := make([]error, len(l))
	for i, e := range l {
		errs[i] = e
	}
	return utilerrors.NewAggregate(errs)
}
