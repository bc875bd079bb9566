package game

import "math"

type Point struct {
	X int
	Y int
}

// Rect is a screen rectangle in client coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

func Distance(a, b Point) float64 {
	return math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
}

func lerp(a, b Point, t float64) (float64, float64) {
	return float64(a.X) + (float64(b.X-a.X))*t, float64(a.Y) + (float64(b.Y-a.Y))*t
}
