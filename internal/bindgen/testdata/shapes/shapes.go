package shapes

import "errors"

type Point struct {
	X, Y  int
	label string
}

func NewPoint(x, y int) *Point {
	return &Point{X: x, Y: y}
}

func Origin() Point {
	return Point{}
}

func (p *Point) Move(dx, dy int) {
	p.X += dx
	p.Y += dy
}

func (p Point) Sum() int {
	return p.X + p.Y
}

func (p *Point) Scale(f int) error {
	if f == 0 {
		return errors.New("zero scale")
	}
	p.X *= f
	p.Y *= f
	return nil
}

func (p *Point) ScaleXY(fx, fy int) error {
	p.X *= fx
	p.Y *= fy
	return nil
}

func (p Point) Labels(prefix string, extra ...string) []string {
	out := []string{prefix + p.label}
	return append(out, extra...)
}

func (p Point) Split() (int, int) {
	return p.X, p.Y
}

func (p *Point) reset() {
	p.X, p.Y = 0, 0
}

type Shape interface {
	Area() float64
}
