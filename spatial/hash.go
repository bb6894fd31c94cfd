package spatial

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// spatialHash partitions the XY plane into square cells of side cellSize
// and buckets obstacles by the cells their clearance-expanded bounding box
// overlaps (spec.md §4.6). Bucket keys are the xxhash digest of the packed
// cell coordinates rather than a composite struct key — the grid's
// is_point_free query runs once per agent per tick per grid space, so it
// is the one lookup in this engine worth a dedicated fast hash instead of
// Go's built-in map hashing of a struct key.
type spatialHash struct {
	cellSize float64
	buckets  map[uint64][]aabb
}

type aabb struct {
	minX, minY, maxX, maxY float64
}

func (b aabb) containsXY(x, y float64) bool {
	return x >= b.minX && x <= b.maxX && y >= b.minY && y <= b.maxY
}

func newSpatialHash(cellSize float64) *spatialHash {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &spatialHash{cellSize: cellSize, buckets: make(map[uint64][]aabb)}
}

func (h *spatialHash) cellOf(x, y float64) (int64, int64) {
	return int64(math.Floor(x / h.cellSize)), int64(math.Floor(y / h.cellSize))
}

func (h *spatialHash) key(cx, cy int64) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(cx))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(cy))
	return xxhash.Sum64(buf[:])
}

// insert expands o's bounding box by clearance and registers it in every
// hash cell the expanded box overlaps.
func (h *spatialHash) insert(o Obstacle, clearance float64) {
	minX, minY, maxX, maxY := o.BoundsXY()
	box := aabb{minX - clearance, minY - clearance, maxX + clearance, maxY + clearance}

	cx0, cy0 := h.cellOf(box.minX, box.minY)
	cx1, cy1 := h.cellOf(box.maxX, box.maxY)
	for cx := cx0; cx <= cx1; cx++ {
		for cy := cy0; cy <= cy1; cy++ {
			k := h.key(cx, cy)
			h.buckets[k] = append(h.buckets[k], box)
		}
	}
}

// isPointFree reports whether (x, y) is clear of every indexed obstacle's
// bounding box. The check is deliberately crude — an axis-aligned
// bounding-box hit, not an exact polygon hit — which automatically blocks
// gaps narrower than twice the clearance margin, since every box grows by
// the margin on each side (spec.md §4.6).
func (h *spatialHash) isPointFree(x, y float64) bool {
	cx, cy := h.cellOf(x, y)
	for _, box := range h.buckets[h.key(cx, cy)] {
		if box.containsXY(x, y) {
			return false
		}
	}
	return true
}
