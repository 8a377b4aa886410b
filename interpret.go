// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Interpretation of PDF content streams and the PostScript-like function
// streams (Type 0/4 cmaps) that share the same token syntax.

package pdf

import (
	"context"
	"io"
	"strings"
)

// A Stack is the operand stack passed to the callback given to Interpret
// and InterpretWithContext. Operators push operands as they are scanned
// and the callback pops whatever its operator needs; values left on the
// stack persist across operators, since some content (cmap programs, in
// particular) rely on that rather than the one-operator-drains-its-args
// convention most content-stream operators follow.
type Stack struct {
	stk []Value
}

// Push pushes v onto the stack.
func (stk *Stack) Push(v Value) {
	stk.stk = append(stk.stk, v)
}

// Pop removes and returns the top of the stack.
// Popping an empty stack returns a null Value rather than panicking,
// so a malformed content stream degrades to producing no text instead
// of crashing the interpreter.
func (stk *Stack) Pop() Value {
	n := len(stk.stk)
	if n == 0 {
		return Value{}
	}
	v := stk.stk[n-1]
	stk.stk = stk.stk[:n-1]
	return v
}

// Len returns the number of values currently on the stack.
func (stk *Stack) Len() int {
	return len(stk.stk)
}

// newDict returns an unresolved empty-dictionary Value, used by cmap
// interpretation to seed "findresource" and "begincmap" results.
func newDict() Value {
	return Value{data: make(dict)}
}

// Interpret interprets the content stream or cmap program in strm,
// calling do once for every operator token encountered. strm may be a
// stream, or an array of streams as a page's /Contents commonly is; per
// PDF 32000-1:2008 7.8.2 the arrays are treated as if concatenated with
// an intervening space, so a token never splits across two streams.
func Interpret(strm Value, do func(stk *Stack, op string)) {
	InterpretWithContext(context.Background(), strm, do)
}

// InterpretWithContext is Interpret with cancellation support. A nil ctx
// behaves like context.Background().
func InterpretWithContext(ctx context.Context, strm Value, do func(stk *Stack, op string)) {
	if ctx == nil {
		ctx = context.Background()
	}
	rd := contentReader(strm)
	if rd == nil {
		return
	}
	defer rd.Close()

	b := newBuffer(rd, 0)
	b.allowEOF = true
	b.allowObjptr = false
	b.allowStream = false
	defer PutPDFBuffer(b)

	var stk Stack
	checkEvery := 0
	for {
		checkEvery++
		if checkEvery&0xFF == 0 {
			if err := ctx.Err(); err != nil {
				return
			}
		}
		tok := b.readToken()
		if tok == nil || tok == io.EOF {
			return
		}
		switch t := tok.(type) {
		case keyword:
			switch t {
			case "<<":
				stk.Push(Value{data: b.readDict()})
			case "[":
				stk.Push(Value{data: b.readArray()})
			case "null":
				stk.Push(Value{})
			case "BI":
				skipInlineImage(b)
			case "ID", "EI", "]", ">>":
				// Stray closing/section tokens from a malformed stream.
			default:
				do(&stk, string(t))
			}
		case bool:
			stk.Push(Value{data: t})
		case int64:
			stk.Push(Value{data: t})
		case float64:
			stk.Push(Value{data: t})
		case string:
			stk.Push(Value{data: t})
		case name:
			stk.Push(Value{data: t})
		}
	}
}

// skipInlineImage consumes a BI ... ID <raw data> EI inline image, per
// PDF 32000-1:2008 8.9.7. The dictionary between BI and ID uses ordinary
// tokens (no enclosing << >>); the bytes between ID and EI are opaque
// sample data that may contain anything, including byte sequences that
// look like PDF tokens, so they cannot be scanned with readToken.
func skipInlineImage(b *buffer) {
	for {
		tok := b.readToken()
		if tok == nil || tok == io.EOF {
			return
		}
		if tok == keyword("ID") {
			break
		}
	}
	// A single whitespace byte separates ID from the image data.
	b.readByte()
	var prev, cur byte
	for {
		c := b.readByte()
		if b.eof {
			return
		}
		prev, cur = cur, c
		if prev == 'E' && cur == 'I' {
			// EI must be delimited on both sides; a byte of sample data
			// that happens to spell "EI" inline is not a terminator.
			peek := b.readByte()
			if b.eof || isSpace(peek) || isDelim(peek) {
				if !b.eof {
					b.unreadByte()
				}
				return
			}
			b.unreadByte()
		}
	}
}

// contentReader returns a reader over strm's decoded bytes. strm may be
// a single content stream or an array of them (PDF 32000-1:2008 7.8.2);
// array elements are joined with a single space so no token spans two
// streams' boundary.
func contentReader(strm Value) io.ReadCloser {
	switch strm.Kind() {
	case Stream:
		return strm.Reader()
	case Array:
		var closers []io.Closer
		var readers []io.Reader
		for i := 0; i < strm.Len(); i++ {
			elem := strm.Index(i)
			if elem.Kind() != Stream {
				continue
			}
			rc := elem.Reader()
			closers = append(closers, rc)
			readers = append(readers, rc)
			readers = append(readers, strings.NewReader(" "))
		}
		if len(readers) == 0 {
			return nil
		}
		return &multiReadCloser{io.MultiReader(readers...), closers}
	default:
		return nil
	}
}

type multiReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiReadCloser) Close() error {
	var err error
	for _, c := range m.closers {
		if e := c.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
