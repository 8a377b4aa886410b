// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Document is the Go-API capability boundary: a handle-oriented surface
// shaped the way a future C-ABI host binding would wrap it (opaque
// handle, POD-like result records, one operation per table row).
// Building the actual C exports is outside this package's scope; this
// is the layer such a binding would sit on top of.

package pdf

import (
	"fmt"
	"os"

	"github.com/gabriel-vasile/mimetype"
)

// PageInfo is the POD record returned by Document.PageInfo.
type PageInfo struct {
	Width    float64
	Height   float64
	Rotation int
}

// TextSpan is a bounds-mode result record: a glyph-run extent and the
// UTF-8 text it covers, in PDF user-space coordinates (origin at lower
// left, y increasing upward).
type TextSpan struct {
	X0, Y0, X1, Y1 float64
	Text           string
	FontSize       float64
}

// Document is the opaque handle capability-boundary operations are
// keyed on. The zero Document is not usable; construct one with
// OpenDocument or OpenDocumentMemory.
type Document struct {
	r      *Reader
	f      *os.File
	sink   *ErrorSink
	fonts  map[string]*Font
}

// OpenDocument opens the PDF file at path under the default error
// policy. It sniffs the file's media type before handing it to the
// core parser so a non-PDF input fails fast with a clear error instead
// of surfacing as a confusing XRef-parse failure.
func OpenDocument(path string) (*Document, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}
	if !mtype.Is("application/pdf") {
		return nil, fmt.Errorf("pdf: %s is not a PDF file (detected %s)", path, mtype.String())
	}

	f, r, err := Open(path)
	if err != nil {
		return nil, err
	}
	return &Document{r: r, f: f, sink: NewErrorSink(DefaultErrorConfig()), fonts: make(map[string]*Font)}, nil
}

// OpenDocumentWithConfig is OpenDocument under an explicit error policy,
// for callers (such as cmd/pdfcli) that load ErrorConfig from a config
// file rather than accepting the default.
func OpenDocumentWithConfig(path string, cfg ErrorConfig) (*Document, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}
	if !mtype.Is("application/pdf") {
		return nil, fmt.Errorf("pdf: %s is not a PDF file (detected %s)", path, mtype.String())
	}

	f, r, err := Open(path)
	if err != nil {
		return nil, err
	}
	return &Document{r: r, f: f, sink: NewErrorSink(cfg), fonts: make(map[string]*Font)}, nil
}

// OpenDocumentMemory opens a PDF already resident in memory.
func OpenDocumentMemory(b []byte) (*Document, error) {
	mtype := mimetype.Detect(b)
	if !mtype.Is("application/pdf") {
		return nil, fmt.Errorf("pdf: input is not a PDF file (detected %s)", mtype.String())
	}
	r, err := NewReader(byteReaderAt(b), int64(len(b)))
	if err != nil {
		return nil, err
	}
	return &Document{r: r, sink: NewErrorSink(DefaultErrorConfig()), fonts: make(map[string]*Font)}, nil
}

type byteReaderAt []byte

func (b byteReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(b)) {
		return 0, fmt.Errorf("pdf: ReadAt out of range")
	}
	n := copy(p, b[off:])
	if n < len(p) {
		return n, fmt.Errorf("pdf: short read")
	}
	return n, nil
}

// Close releases resources held for the document.
func (d *Document) Close() error {
	if d == nil || d.f == nil {
		return nil
	}
	return d.f.Close()
}

// PageCount returns the page count, or -1 if d is nil.
func (d *Document) PageCount() int {
	if d == nil {
		return -1
	}
	return d.r.NumPage()
}

// IsEncrypted reports whether the trailer declares an /Encrypt entry.
func (d *Document) IsEncrypted() bool {
	if d == nil {
		return false
	}
	return d.r.Trailer().Key("Encrypt").Kind() != Null
}

// PageInfo reports page's dimensions and rotation. ok is false if the
// page number is out of range.
func (d *Document) PageInfo(page int) (info PageInfo, ok bool) {
	if d == nil || page < 1 || page > d.r.NumPage() {
		return PageInfo{}, false
	}
	p := d.r.Page(page)
	if p.V.IsNull() {
		return PageInfo{}, false
	}
	box := p.MediaBox()
	var w, h float64
	if box.Kind() == Array && box.Len() == 4 {
		x0, y0 := box.Index(0).Float64(), box.Index(1).Float64()
		x1, y1 := box.Index(2).Float64(), box.Index(3).Float64()
		w, h = x1-x0, y1-y0
	}
	rot := int(p.V.Key("Rotate").Int64())
	return PageInfo{Width: w, Height: h, Rotation: rot}, true
}

// ExtractPage returns page's text in accuracy mode: structure-tree
// order when it plausibly covers the page, content-stream order
// otherwise.
func (d *Document) ExtractPage(page int) (string, error) {
	if d == nil || page < 1 || page > d.r.NumPage() {
		return "", ErrInvalidPage
	}
	p := d.r.Page(page)
	if p.V.IsNull() {
		return "", ErrInvalidPage
	}
	return p.ReadingOrder(d.fonts)
}

// ExtractPageFast returns page's text in stream order only, skipping
// the structure-tree coverage check ExtractPage performs.
func (d *Document) ExtractPageFast(page int) (string, error) {
	if d == nil || page < 1 || page > d.r.NumPage() {
		return "", ErrInvalidPage
	}
	p := d.r.Page(page)
	if p.V.IsNull() {
		return "", ErrInvalidPage
	}
	return p.GetPlainText(nil, d.fonts)
}

// ExtractAll concatenates every page's accuracy-mode text, separating
// pages with a form-feed byte.
func (d *Document) ExtractAll() (string, error) {
	return d.extractAll(d.ExtractPage)
}

// ExtractAllFast concatenates every page's stream-order text.
func (d *Document) ExtractAllFast() (string, error) {
	return d.extractAll(d.ExtractPageFast)
}

func (d *Document) extractAll(extract func(int) (string, error)) (string, error) {
	if d == nil {
		return "", ErrInvalidPage
	}
	n := d.r.NumPage()
	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		text, err := extract(i)
		if err != nil {
			d.sink.Record(KindSyntaxError, 0, "page %d: %v", i, err)
			if _, fatal := d.sink.Fatal(); fatal {
				return "", err
			}
			text = ""
		}
		out = append(out, text)
	}
	joined := ""
	for i, t := range out {
		if i > 0 {
			joined += "\x0c"
		}
		joined += t
	}
	return joined, nil
}

// ExtractBounds returns page's text as glyph-run extent records.
func (d *Document) ExtractBounds(page int) ([]TextSpan, error) {
	if d == nil || page < 1 || page > d.r.NumPage() {
		return nil, ErrInvalidPage
	}
	p := d.r.Page(page)
	if p.V.IsNull() {
		return nil, ErrInvalidPage
	}
	content, err := p.contentWithFonts(d.fonts)
	if err != nil {
		return nil, err
	}
	spans := make([]TextSpan, 0, len(content.Text))
	for _, t := range content.Text {
		spans = append(spans, TextSpan{
			X0:       t.X,
			Y0:       t.Y,
			X1:       t.X + t.W,
			Y1:       t.Y + t.FontSize,
			Text:     t.S,
			FontSize: t.FontSize,
		})
	}
	return spans, nil
}

// Errors returns every non-fatal error recorded while serving this
// document's operations so far.
func (d *Document) Errors() []ErrorRecord {
	if d == nil {
		return nil
	}
	return d.sink.Records()
}
