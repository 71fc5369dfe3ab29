// geometry.go defines the sizes and rectangles used by every channel config.

package types

import (
	"fmt"
)

type Size struct {
	Width  uint32
	Height uint32
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

func (s Size) IsZero() bool {
	return s.Width == 0 || s.Height == 0
}

type Rect struct {
	X      uint32
	Y      uint32
	Width  uint32
	Height uint32
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Right is the exclusive right edge.
func (r Rect) Right() uint32 {
	return r.X + r.Width
}

// Bottom is the exclusive bottom edge.
func (r Rect) Bottom() uint32 {
	return r.Y + r.Height
}

// Within reports if r lies entirely within an image of the given size.
func (r Rect) Within(s Size) bool {
	return r.Right() <= s.Width && r.Bottom() <= s.Height
}

// FullRect returns the rectangle covering the whole image of size s.
func FullRect(s Size) Rect {
	return Rect{Width: s.Width, Height: s.Height}
}
