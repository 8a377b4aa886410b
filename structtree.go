// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

// maxStructDepth bounds recursion into a malformed or cyclic structure
// tree (PDF /StructTreeRoot), mirroring the other hard recursion caps
// this package applies to adversarial input (page tree, Do recursion).
const maxStructDepth = 256

// structureMCIDs returns, for each page object number, the ordered
// sequence of MCIDs a Tagged-PDF /StructTreeRoot assigns to that page,
// built once per Reader and cached. A page absent from the map either
// has no structure tree or contributes no marked content.
func (r *Reader) structureMCIDs() map[uint32][]int {
	r.structOnce.Do(func() {
		r.structMCID = buildStructureMCIDs(r)
	})
	return r.structMCID
}

func buildStructureMCIDs(r *Reader) map[uint32][]int {
	root := r.Trailer().Key("Root").Key("StructTreeRoot")
	if root.Kind() != Dict {
		return nil
	}
	out := make(map[uint32][]int)
	visited := make(map[objptr]bool)
	walkStructKids(root.Key("K"), Value{}, out, visited, 0)
	return out
}

// walkStructKids walks one structure-tree node's /K entry, which may be
// a single kid, an array of kids, a bare integer MCID, or an MCR
// (marked-content reference) dict. page carries the nearest ancestor
// /Pg for kids that omit their own.
func walkStructKids(k Value, page Value, out map[uint32][]int, visited map[objptr]bool, depth int) {
	if depth > maxStructDepth {
		return
	}
	switch k.Kind() {
	case Array:
		for i := 0; i < k.Len(); i++ {
			walkStructKids(k.Index(i), page, out, visited, depth+1)
		}
	case Integer:
		recordMCID(page, int(k.Int64()), out)
	case Dict:
		if k.Key("Type").Name() == "MCR" {
			pg := k.Key("Pg")
			if pg.Kind() == Null {
				pg = page
			}
			recordMCID(pg, int(k.Key("MCID").Int64()), out)
			return
		}
		// An ordinary structure element: recurse into its own kids,
		// inheriting /Pg if this node doesn't redeclare it, skipping
		// layout artifacts per PDF 32000-1:2008 14.8.2.2.
		if k.Key("S").Name() == "Artifact" {
			return
		}
		if k.ptr.id != 0 {
			if visited[k.ptr] {
				return
			}
			visited[k.ptr] = true
		}
		pg := k.Key("Pg")
		if pg.Kind() == Null {
			pg = page
		}
		walkStructKids(k.Key("K"), pg, out, visited, depth+1)
	}
}

func recordMCID(page Value, mcid int, out map[uint32][]int) {
	if page.Kind() != Dict || page.ptr.id == 0 {
		return
	}
	out[page.ptr.id] = append(out[page.ptr.id], mcid)
}
