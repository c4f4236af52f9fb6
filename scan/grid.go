package scan

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Point is a commanded (x, y) position in microns
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Index is the location of a point in the grid.  Row follows y, Col follows x.
type Index struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Grid is a rectangular lattice of NX x NY points over [X1,X2] x [Y1,Y2]
type Grid struct {
	X1 float64 `json:"x1" koanf:"x1" yaml:"x1"`
	X2 float64 `json:"x2" koanf:"x2" yaml:"x2"`
	Y1 float64 `json:"y1" koanf:"y1" yaml:"y1"`
	Y2 float64 `json:"y2" koanf:"y2" yaml:"y2"`
	NX int     `json:"nx" koanf:"nx" yaml:"nx"`
	NY int     `json:"ny" koanf:"ny" yaml:"ny"`
}

// MaxPoints is the largest number of points a grid may have, 1024x1024
const MaxPoints = 1 << 20

// Validate returns an error if the grid has no points or more than MaxPoints
func (g Grid) Validate() error {
	if g.NX < 1 || g.NY < 1 {
		return fmt.Errorf("scan grid must have at least one point per axis, got %dx%d", g.NX, g.NY)
	}
	// compare before multiplying so the product cannot overflow
	if g.NX > MaxPoints || g.NY > MaxPoints/g.NX {
		return fmt.Errorf("scan grid %dx%d exceeds %d points", g.NX, g.NY, MaxPoints)
	}
	return nil
}

// Len is the number of points in the grid
func (g Grid) Len() int {
	return g.NX * g.NY
}

// Linspace returns n evenly spaced values from start to end inclusive.
// A single point sits at start.  The last value is exactly end.
func Linspace(start, end float64, n int) []float64 {
	if n < 1 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}
	out := floats.Span(make([]float64, n), start, end)
	out[n-1] = end
	return out
}

// Xs are the x coordinates of the grid columns
func (g Grid) Xs() []float64 {
	return Linspace(g.X1, g.X2, g.NX)
}

// Ys are the y coordinates of the grid rows
func (g Grid) Ys() []float64 {
	return Linspace(g.Y1, g.Y2, g.NY)
}

// Points returns every point of the grid in row-major order: y is the slow
// axis and x the fast one, so the first point is (X1, Y1) and the last is
// (X2, Y2)
func (g Grid) Points() []Point {
	xs, ys := g.Xs(), g.Ys()
	pts := make([]Point, 0, len(xs)*len(ys))
	for _, y := range ys {
		for _, x := range xs {
			pts = append(pts, Point{X: x, Y: y})
		}
	}
	return pts
}

// IndexOf converts a flat row-major offset into a grid Index
func (g Grid) IndexOf(i int) Index {
	return Index{Row: i / g.NX, Col: i % g.NX}
}
