// Package core provides fundamental types and utilities for the simulator.
// It contains no external dependencies to keep game logic pure and testable.
package core

import "math"

// Rect represents an axis-aligned bounding box used for collision detection.
// Coordinates are world pixels.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Intersects returns true if this rectangle overlaps with another.
// Uses standard AABB collision detection.
func (r Rect) Intersects(other Rect) bool {
	// No overlap if one rect is completely to the left, right, above, or below
	if r.X >= other.Right() || other.X >= r.Right() {
		return false
	}
	if r.Y >= other.Bottom() || other.Y >= r.Bottom() {
		return false
	}
	return true
}

// ContainsRect returns true if other lies completely inside this rectangle.
// Shared edges count as inside.
func (r Rect) ContainsRect(other Rect) bool {
	return other.X >= r.X && other.Y >= r.Y &&
		other.Right() <= r.Right() && other.Bottom() <= r.Bottom()
}

// Translate returns the rectangle moved by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

// Position returns the top-left corner.
func (r Rect) Position() Point {
	return Point{X: r.X, Y: r.Y}
}

// Point is a position in world pixels.
type Point struct {
	X, Y int
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// Direction is a unit step on the grid. The zero value means "no direction".
type Direction struct {
	DX, DY int
}

var (
	DirNone  = Direction{}
	DirUp    = Direction{DX: 0, DY: -1}
	DirDown  = Direction{DX: 0, DY: 1}
	DirLeft  = Direction{DX: -1, DY: 0}
	DirRight = Direction{DX: 1, DY: 0}
)

// CardinalDirections lists the four movement directions in a fixed order.
// Random choices index into this slice so seeded runs stay reproducible.
var CardinalDirections = []Direction{DirUp, DirDown, DirLeft, DirRight}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	return Direction{DX: -d.DX, DY: -d.DY}
}

// IsNone reports whether d is the zero direction.
func (d Direction) IsNone() bool {
	return d.DX == 0 && d.DY == 0
}

// ParseDirection maps a name (up, down, left, right) to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "up":
		return DirUp, true
	case "down":
		return DirDown, true
	case "left":
		return DirLeft, true
	case "right":
		return DirRight, true
	case "", "none":
		return DirNone, true
	default:
		return DirNone, false
	}
}

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	case DirNone:
		return "none"
	default:
		return "mixed"
	}
}

// Abs returns the absolute value of an integer.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
