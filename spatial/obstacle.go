package spatial

import "github.com/go-gl/mathgl/mgl64"

// Obstacle is a right prism (spec.md §3): a polygon base, implicitly
// closed, extruded along Z by Height starting at ZMin.
type Obstacle struct {
	Polygon []mgl64.Vec2
	ZMin    float64
	Height  float64
}

// ContainsXY reports whether (x, y) lies inside the obstacle's polygon
// base, via the standard ray-casting (even-odd) rule.
func (o Obstacle) ContainsXY(x, y float64) bool {
	n := len(o.Polygon)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := o.Polygon[i], o.Polygon[j]
		if (pi.Y() > y) != (pj.Y() > y) {
			xCross := pj.X() + (y-pj.Y())*(pi.X()-pj.X())/(pi.Y()-pj.Y())
			if x < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

// Contains reports whether p lies inside the prism: within the polygon
// base in XY, and within [ZMin, ZMin+Height] in Z.
func (o Obstacle) Contains(p mgl64.Vec3) bool {
	if p.Z() < o.ZMin || p.Z() > o.ZMin+o.Height {
		return false
	}
	return o.ContainsXY(p.X(), p.Y())
}

// BoundsXY returns the axis-aligned bounding box of the polygon base.
func (o Obstacle) BoundsXY() (minX, minY, maxX, maxY float64) {
	if len(o.Polygon) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = o.Polygon[0].X(), o.Polygon[0].Y()
	maxX, maxY = minX, minY
	for _, p := range o.Polygon[1:] {
		minX, maxX = min(minX, p.X()), max(maxX, p.X())
		minY, maxY = min(minY, p.Y()), max(maxY, p.Y())
	}
	return minX, minY, maxX, maxY
}

// CentroidXY returns the (unweighted) average of the polygon's vertices —
// a cheap approximation of the centroid, good enough for the boundary-
// follow detour heuristic in CollisionSpace.
func (o Obstacle) CentroidXY() mgl64.Vec2 {
	if len(o.Polygon) == 0 {
		return mgl64.Vec2{}
	}
	var sum mgl64.Vec2
	for _, p := range o.Polygon {
		sum = sum.Add(p)
	}
	return sum.Mul(1 / float64(len(o.Polygon)))
}

// segmentsIntersect reports whether segment p1-p2 crosses segment p3-p4,
// using the standard orientation test (including the degenerate collinear
// cases).
func segmentsIntersect(p1, p2, p3, p4 mgl64.Vec2) bool {
	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	if d1 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return true
	}
	return false
}

func direction(a, b, c mgl64.Vec2) float64 {
	return (b.X()-a.X())*(c.Y()-a.Y()) - (b.Y()-a.Y())*(c.X()-a.X())
}

func onSegment(a, b, p mgl64.Vec2) bool {
	return min(a.X(), b.X()) <= p.X() && p.X() <= max(a.X(), b.X()) &&
		min(a.Y(), b.Y()) <= p.Y() && p.Y() <= max(a.Y(), b.Y())
}

// IntersectsSegment reports whether the XY segment a-b crosses any edge of
// the obstacle's polygon base, or has either endpoint inside it.
func (o Obstacle) IntersectsSegment(a, b mgl64.Vec2) bool {
	if o.ContainsXY(a.X(), a.Y()) || o.ContainsXY(b.X(), b.Y()) {
		return true
	}
	n := len(o.Polygon)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		if segmentsIntersect(a, b, o.Polygon[i], o.Polygon[j]) {
			return true
		}
	}
	return false
}
