package pdf

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTaggedTestPDF builds a single-page PDF with a /StructTreeRoot whose
// one structure element's /K mixes a bare integer MCID and an MCR dict,
// exercising both shapes walkStructKids handles.
func buildTaggedTestPDF() []byte {
	var b testPDFBuilder
	b.buf.WriteString("%PDF-1.7\n")

	b.recordOffset() // 1: catalog
	b.buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R /StructTreeRoot 5 0 R >>\nendobj\n")

	b.recordOffset() // 2: pages
	b.buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")

	b.recordOffset() // 3: page
	b.buf.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R " +
		"/Resources << /Font << /F1 << /Type /Font /Subtype /Type1 /BaseFont /Helvetica >> >> >> " +
		"/StructParents 0 >>\nendobj\n")

	text := "BT /F1 12 Tf 50 700 Td (Hello) Tj ET"
	b.recordOffset() // 4: content stream
	fmt.Fprintf(&b.buf, "4 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(text), text)

	b.recordOffset() // 5: struct tree root
	b.buf.WriteString("5 0 obj\n<< /Type /StructTreeRoot /K 6 0 R >>\nendobj\n")

	b.recordOffset() // 6: struct elem
	b.buf.WriteString("6 0 obj\n<< /Type /StructElem /S /P /Pg 3 0 R /K [0 << /Type /MCR /Pg 3 0 R /MCID 1 >>] >>\nendobj\n")

	xrefOffset := b.buf.Len()
	total := 7
	fmt.Fprintf(&b.buf, "xref\n0 %d\n", total)
	b.buf.WriteString("0000000000 65535 f \n")
	for _, off := range b.offsets {
		fmt.Fprintf(&b.buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b.buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF", total, xrefOffset)

	return b.buf.Bytes()
}

func TestStructureMCIDsWalksIntegerAndMCRKids(t *testing.T) {
	data := buildTaggedTestPDF()
	r, err := NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	defer r.Close()

	page := r.Page(1)
	require.False(t, page.V.IsNull())

	mcids := r.structureMCIDs()[page.V.ptr.id]
	assert.Equal(t, []int{0, 1}, mcids)
}

func TestStructureMCIDsNilWithoutStructTreeRoot(t *testing.T) {
	data := buildTestPDF(1, "1.7", false)
	r := newTestReader(t, data)
	assert.Nil(t, r.structureMCIDs())
}

func TestWalkStructKidsSkipsArtifacts(t *testing.T) {
	out := make(map[uint32][]int)
	visited := make(map[objptr]bool)
	artifact := Value{data: dict{"S": name("Artifact"), "K": int64(3)}}
	walkStructKids(artifact, Value{}, out, visited, 0)
	assert.Empty(t, out)
}

func TestWalkStructKidsStopsAtDepthCap(t *testing.T) {
	out := make(map[uint32][]int)
	visited := make(map[objptr]bool)
	// A bare integer one level past the cap must not be recorded.
	walkStructKids(Value{data: int64(9)}, Value{}, out, visited, maxStructDepth+1)
	assert.Empty(t, out)
}
