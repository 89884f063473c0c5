package physics

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Vec2 is a plain 2D vector used by transforms and shapes.
type Vec2 struct{ X, Y float64 }

func (v Vec2) Add(o Vec2) Vec2         { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Scale(f float64) Vec2    { return Vec2{v.X * f, v.Y * f} }
func (v Vec2) String() string          { return fmt.Sprintf("%g,%g", v.X, v.Y) }
func (v Vec2) Floor() (x, y int)       { return int(math.Floor(v.X)), int(math.Floor(v.Y)) }
func (v Vec2) Equal(o Vec2) bool       { return v.X == o.X && v.Y == o.Y }
func (v Vec2) Distance(o Vec2) float64 { return math.Hypot(o.X-v.X, o.Y-v.Y) }

// ParseVec2 reads the "x,y" form used by map documents.
func ParseVec2(s string) (Vec2, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Vec2{}, fmt.Errorf("vector %q: want \"x,y\"", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Vec2{}, fmt.Errorf("vector %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Vec2{}, fmt.Errorf("vector %q: %w", s, err)
	}
	return Vec2{x, y}, nil
}

// Box2 is an axis-aligned box.
type Box2 struct {
	Left, Bottom, Right, Top float64
}

func (b Box2) Width() float64  { return b.Right - b.Left }
func (b Box2) Height() float64 { return b.Top - b.Bottom }

func (b Box2) Translate(v Vec2) Box2 {
	return Box2{b.Left + v.X, b.Bottom + v.Y, b.Right + v.X, b.Top + v.Y}
}

// Union grows b to cover o.
func (b Box2) Union(o Box2) Box2 {
	return Box2{
		Left:   math.Min(b.Left, o.Left),
		Bottom: math.Min(b.Bottom, o.Bottom),
		Right:  math.Max(b.Right, o.Right),
		Top:    math.Max(b.Top, o.Top),
	}
}

// ParseBox2 reads the "left,bottom,right,top" form.
func ParseBox2(s string) (Box2, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Box2{}, fmt.Errorf("box %q: want \"left,bottom,right,top\"", s)
	}
	var vals [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Box2{}, fmt.Errorf("box %q: %w", s, err)
		}
		vals[i] = f
	}
	if vals[2] < vals[0] || vals[3] < vals[1] {
		return Box2{}, fmt.Errorf("box %q: inverted bounds", s)
	}
	return Box2{vals[0], vals[1], vals[2], vals[3]}, nil
}
