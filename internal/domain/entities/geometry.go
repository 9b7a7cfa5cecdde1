package entities

// Rect is a bounding box in viewport coordinates (0 is the top edge of the visible region)
type Rect struct {
	Top    float64 `json:"top" yaml:"top" toml:"top"`
	Left   float64 `json:"left,omitempty" yaml:"left,omitempty" toml:"left"`
	Width  float64 `json:"width,omitempty" yaml:"width,omitempty" toml:"width"`
	Height float64 `json:"height" yaml:"height" toml:"height"`
}

// Bottom returns the bottom edge
func (r Rect) Bottom() float64 {
	return r.Top + r.Height
}

// CenterY returns the vertical center
func (r Rect) CenterY() float64 {
	return r.Top + r.Height/2
}

// IsEmpty returns true if the box has no height
func (r Rect) IsEmpty() bool {
	return r.Height <= 0
}
