package layers

import (
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// smallest box side; rtreego rejects zero sized rectangles
const epsilon = 1e-6

type entry struct {
	id   int
	rect rtreego.Rect
}

func (e *entry) Bounds() rtreego.Rect {
	return e.rect
}

func rect(b orb.Bound) rtreego.Rect {
	point := rtreego.Point{b.Min[0], b.Min[1]}
	lengths := []float64{max(b.Max[0]-b.Min[0], epsilon), max(b.Max[1]-b.Min[1], epsilon)}
	r, _ := rtreego.NewRect(point, lengths)
	return r
}

// RTreeIndex is the SpatialIndex backed by an R-tree.
type RTreeIndex struct {
	tree *rtreego.Rtree
}

func NewRTreeIndex() *RTreeIndex {
	return &RTreeIndex{tree: rtreego.NewTree(2, 25, 50)}
}

func (ix *RTreeIndex) Insert(id int, b orb.Bound) {
	ix.tree.Insert(&entry{id: id, rect: rect(b)})
}

// Search returns the ids whose boxes intersect b, in no particular order.
func (ix *RTreeIndex) Search(b orb.Bound) []int {
	hits := ix.tree.SearchIntersect(rect(b))
	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.(*entry).id
	}
	return out
}

func (ix *RTreeIndex) Size() int {
	return ix.tree.Size()
}
