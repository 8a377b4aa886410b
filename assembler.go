// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Reading-order assembly: choosing between Tagged-PDF structure order,
// content-stream order, and geometric clustering for a page's text.

package pdf

import "strings"

// maxMCIDBufferBytes bounds a single marked-content run's buffered text;
// pages with pathologically large tagged runs truncate rather than grow
// without limit.
const maxMCIDBufferBytes = 4096

// structuredCoverageRatio is the minimum fraction of stream-order length
// the structure-tree-driven text must reach to be trusted over it.
// Partially-tagged documents have structure trees that cover only part
// of the page, so length ratio stands in for "coverage".
const structuredCoverageRatio = 0.6

// ReadingOrder returns p's text using the most reliable ordering source
// available: Tagged-PDF structure order when it covers a plausible
// fraction of the page, content-stream order otherwise, and geometric
// clustering as a last resort when stream order itself yields nothing.
func (p Page) ReadingOrder(fonts map[string]*Font) (string, error) {
	stream, err := p.GetPlainText(nil, fonts)
	if err != nil {
		return "", err
	}

	if mcids := p.mcidOrder(); len(mcids) > 0 {
		structured := p.structuredText(mcids, fonts)
		if structured != "" && len(structured) >= int(float64(len(stream))*structuredCoverageRatio) {
			return structured, nil
		}
	}
	if stream != "" {
		return stream, nil
	}
	return p.geometricText(fonts), nil
}

// mcidOrder reports this page's MCID reading order from the document's
// structure tree, or nil if the page isn't represented there.
func (p Page) mcidOrder() []int {
	if p.V.r == nil || p.V.ptr.id == 0 {
		return nil
	}
	return p.V.r.structureMCIDs()[p.V.ptr.id]
}

// structuredText concatenates each MCID's buffered text in the order
// given by mcids, inserting a single space between non-empty chunks.
func (p Page) structuredText(mcids []int, fonts map[string]*Font) string {
	buffers := p.collectMCIDText(fonts)
	var sb strings.Builder
	for _, id := range mcids {
		chunk := strings.TrimSpace(buffers[id])
		if chunk == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(chunk)
	}
	return sb.String()
}

// geometricText falls back to the (y-bin, x) clustering heuristic when
// neither the structure tree nor stream order produced usable text.
func (p Page) geometricText(fonts map[string]*Font) string {
	content, err := p.contentWithFonts(fonts)
	if err != nil || len(content.Text) == 0 {
		return ""
	}
	return SmartTextRunsToPlain(content.Text)
}

// collectMCIDText runs the content interpreter in structured mode,
// routing each text-showing operator's decoded text to the buffer for
// the innermost non-sentinel MCID on the marked-content stack at the
// time it is shown. Content outside any BDC/BMC span, or inside one
// lacking an /MCID, is dropped (sentinel -1).
func (p Page) collectMCIDText(fonts map[string]*Font) map[int]string {
	buffers := make(map[int]*strings.Builder)
	if p.V.IsNull() || p.V.Key("Contents").Kind() == Null {
		return map[int]string{}
	}

	scope := p.buildFontScope(p.Resources(), fonts, nil)
	mc := mcidExtractor{page: p, buffers: buffers}
	func() {
		defer func() { recover() }()
		mc.process(p.V.Key("Contents"), p.Resources(), scope)
	}()

	out := make(map[int]string, len(buffers))
	for id, b := range buffers {
		out[id] = b.String()
	}
	return out
}

type mcidExtractor struct {
	page    Page
	buffers map[int]*strings.Builder
	mcStack []int // sentinel -1 marks a BMC/BDC span with no /MCID
}

func (mc *mcidExtractor) current() int {
	for i := len(mc.mcStack) - 1; i >= 0; i-- {
		if mc.mcStack[i] != -1 {
			return mc.mcStack[i]
		}
	}
	return -1
}

func (mc *mcidExtractor) process(strm Value, resources Value, scope *fontScope) {
	if strm.Kind() == Null {
		return
	}
	var enc TextEncoding = &nopEncoder{}
	Interpret(strm, func(stk *Stack, op string) {
		n := stk.Len()
		args := make([]Value, n)
		for i := n - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}
		switch op {
		default:
			return
		case "BDC":
			mcid := -1
			if len(args) == 2 && args[1].Kind() == Dict {
				if m := args[1].Key("MCID"); m.Kind() == Integer {
					mcid = int(m.Int64())
				}
			}
			mc.mcStack = append(mc.mcStack, mcid)
		case "BMC":
			mc.mcStack = append(mc.mcStack, -1)
		case "EMC":
			if len(mc.mcStack) > 0 {
				mc.mcStack = mc.mcStack[:len(mc.mcStack)-1]
			}
		case "Tf":
			if len(args) != 2 {
				return
			}
			if font := scope.Get(args[0].Name()); font != nil {
				enc = font.Encoder()
				if enc == nil {
					enc = &nopEncoder{}
				}
			} else {
				enc = &nopEncoder{}
			}
		case "'", "\"":
			if len(args) == 0 {
				return
			}
			mc.emit(enc, args[len(args)-1].RawString())
		case "Tj":
			if len(args) != 1 {
				return
			}
			mc.emit(enc, args[0].RawString())
		case "TJ":
			if len(args) != 1 {
				return
			}
			v := args[0]
			for i := 0; i < v.Len(); i++ {
				x := v.Index(i)
				if x.Kind() == String {
					mc.emit(enc, x.RawString())
				}
			}
		case "Do":
			if len(args) != 1 {
				return
			}
			mc.handleDo(args[0], resources, scope)
		}
	})
}

func (mc *mcidExtractor) emit(enc TextEncoding, raw string) {
	if enc == nil {
		enc = &nopEncoder{}
	}
	text := enc.Decode(raw)
	if text == "" {
		return
	}
	id := mc.current()
	b := mc.buffers[id]
	if b == nil {
		b = &strings.Builder{}
		mc.buffers[id] = b
	}
	if b.Len() >= maxMCIDBufferBytes {
		return
	}
	if b.Len()+len(text) > maxMCIDBufferBytes {
		text = text[:maxMCIDBufferBytes-b.Len()]
	}
	b.WriteString(text)
}

func (mc *mcidExtractor) handleDo(arg Value, resources Value, scope *fontScope) {
	name := arg.Name()
	if name == "" {
		return
	}
	xobjects := resources.Key("XObject")
	if xobjects.Kind() != Dict {
		return
	}
	xobj := xobjects.Key(name)
	if xobj.Kind() != Stream || xobj.Key("Subtype").Name() != "Form" {
		return
	}
	formRes := xobj.Key("Resources")
	if formRes.Kind() == Null {
		formRes = resources
	}
	childScope := mc.page.buildFontScope(formRes, nil, scope)
	mc.process(xobj, formRes, childScope)
}
