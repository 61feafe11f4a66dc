package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// Buffer collects everything a run wants to tell the operator, so the
// whole output, including failures, can be delivered as one report.
type Buffer struct {
	buf bytes.Buffer
}

// NewBuffer creates an empty Buffer
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Write implements io.Writer
func (b *Buffer) Write(p []byte) (int, error) {
	return b.buf.Write(p)
}

// WriteString appends s as is
func (b *Buffer) WriteString(s string) {
	b.buf.WriteString(s)
}

// Println appends a line
func (b *Buffer) Println(a ...interface{}) {
	fmt.Fprintln(&b.buf, a...)
}

// Printf appends formatted text
func (b *Buffer) Printf(format string, args ...interface{}) {
	fmt.Fprintf(&b.buf, format, args...)
}

// AppendError appends a "Kind: message" line for err
func (b *Buffer) AppendError(err error) {
	b.Println(DescribeError(err))
}

// String returns the collected text without surrounding whitespace
func (b *Buffer) String() string {
	return strings.TrimSpace(b.buf.String())
}

// Empty reports whether there is nothing to deliver
func (b *Buffer) Empty() bool {
	return b.String() == ""
}

type kinded interface {
	Kind() string
}

// DescribeError renders err as "Kind: message", using the Kind of the
// outermost classified error in the chain.
func DescribeError(err error) string {
	var k kinded
	if errors.As(err, &k) {
		return k.Kind() + ": " + err.Error()
	}
	return "Error: " + err.Error()
}
