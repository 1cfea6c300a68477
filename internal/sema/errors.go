package sema

import (
	"fmt"

	"github.com/you-not-fish/islec/internal/diag"
	"github.com/you-not-fish/islec/internal/syntax"
)

// ErrorHandler is a function called for each type error.
type ErrorHandler func(pos syntax.Pos, msg string)

// errorf reports a type error at the given position.
func (c *Checker) errorf(pos syntax.Pos, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	err := &diag.Error{Kind: diag.Type, Msg: msg, Spans: []syntax.Span{syntax.SpanAt(pos)}}

	if c.errors == 0 {
		c.first = err
	}
	c.errors++
	c.diags.Add(err)

	if c.conf.Error != nil {
		c.conf.Error(pos, msg)
	}
}
