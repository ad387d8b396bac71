package entity

import "image"

// Region is a named rectangle over the first page rasterized at the configured DPI.
type Region struct {
	Title string `json:"title"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	W     int    `json:"w"`
	H     int    `json:"h"`
}

// Rect returns the region as an image rectangle. A non-positive width or height
// gives the empty rectangle instead of letting image.Rect swap the corners.
func (r Region) Rect() image.Rectangle {
	if r.W <= 0 || r.H <= 0 {
		return image.Rectangle{}
	}
	return image.Rectangle{
		Min: image.Pt(r.X, r.Y),
		Max: image.Pt(r.X+r.W, r.Y+r.H),
	}
}

// Layout is an ordered set of regions. Order is kept through import and export
// but has no effect on extraction.
type Layout []Region

// Titles returns the region titles in declaration order.
func (l Layout) Titles() []string {
	out := make([]string, len(l))
	for i, r := range l {
		out[i] = r.Title
	}
	return out
}
