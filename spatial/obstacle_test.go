package spatial

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func square(minX, minY, maxX, maxY, zMin, height float64) Obstacle {
	return Obstacle{
		Polygon: []mgl64.Vec2{
			{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY},
		},
		ZMin:   zMin,
		Height: height,
	}
}

func TestContainsXYInsideAndOutside(t *testing.T) {
	o := square(0, 0, 10, 10, 0, 5)
	if !o.ContainsXY(5, 5) {
		t.Fatal("center point should be inside the square")
	}
	if o.ContainsXY(15, 15) {
		t.Fatal("point far outside the square reported inside")
	}
}

func TestContainsChecksZRange(t *testing.T) {
	o := square(0, 0, 10, 10, 2, 3) // Z in [2, 5]
	if !o.Contains(mgl64.Vec3{5, 5, 3}) {
		t.Fatal("point within XY and Z range should be contained")
	}
	if o.Contains(mgl64.Vec3{5, 5, 10}) {
		t.Fatal("point above the prism's height reported contained")
	}
	if o.Contains(mgl64.Vec3{5, 5, 0}) {
		t.Fatal("point below ZMin reported contained")
	}
}

func TestBoundsXY(t *testing.T) {
	o := square(1, 2, 9, 8, 0, 1)
	minX, minY, maxX, maxY := o.BoundsXY()
	if minX != 1 || minY != 2 || maxX != 9 || maxY != 8 {
		t.Fatalf("BoundsXY() = (%v,%v,%v,%v), want (1,2,9,8)", minX, minY, maxX, maxY)
	}
}

func TestCentroidXYIsVertexAverage(t *testing.T) {
	o := square(0, 0, 10, 10, 0, 1)
	c := o.CentroidXY()
	if c.X() != 5 || c.Y() != 5 {
		t.Fatalf("CentroidXY() = %v, want (5,5)", c)
	}
}

func TestIntersectsSegmentCrossingThroughObstacle(t *testing.T) {
	o := square(0, 0, 10, 10, 0, 1)
	a := mgl64.Vec2{-5, 5}
	b := mgl64.Vec2{15, 5}
	if !o.IntersectsSegment(a, b) {
		t.Fatal("segment crossing through the square should intersect")
	}
}

func TestIntersectsSegmentMissingObstacle(t *testing.T) {
	o := square(0, 0, 10, 10, 0, 1)
	a := mgl64.Vec2{-5, 50}
	b := mgl64.Vec2{15, 50}
	if o.IntersectsSegment(a, b) {
		t.Fatal("segment far above the square reported an intersection")
	}
}

func TestIntersectsSegmentEndpointInsideObstacle(t *testing.T) {
	o := square(0, 0, 10, 10, 0, 1)
	a := mgl64.Vec2{5, 5} // inside
	b := mgl64.Vec2{50, 50}
	if !o.IntersectsSegment(a, b) {
		t.Fatal("segment starting inside the square should intersect")
	}
}

func TestContainsXYDegeneratePolygonIsAlwaysFalse(t *testing.T) {
	o := Obstacle{Polygon: []mgl64.Vec2{{0, 0}, {1, 1}}}
	if o.ContainsXY(0.5, 0.5) {
		t.Fatal("a 2-vertex polygon should never report containment")
	}
}
