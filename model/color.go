package model

import "math"

// Color is an RGB triple. Channels are kept in [0,255] by every writer.
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// DefaultCellColor is what an unset cell reads as.
var DefaultCellColor = Color{R: 240, G: 240, B: 240}

// Channels is a bit set of color channels.
type Channels uint8

const (
	ChanR Channels = 1 << iota
	ChanG
	ChanB

	AllChannels = ChanR | ChanG | ChanB
)

// ColorPatch is a partial color write: only channels in Set are applied.
type ColorPatch struct {
	Color
	Set Channels
}

// FullPatch overwrites every channel.
func FullPatch(c Color) ColorPatch {
	return ColorPatch{Color: c, Set: AllChannels}
}

// With returns a copy of p with the named channel set to v.
// Unknown channel names leave p unchanged.
func (p ColorPatch) With(channel string, v int) ColorPatch {
	switch channel {
	case "r":
		p.R, p.Set = v, p.Set|ChanR
	case "g":
		p.G, p.Set = v, p.Set|ChanG
	case "b":
		p.B, p.Set = v, p.Set|ChanB
	}
	return p
}

// Empty reports whether the patch touches no channel.
func (p ColorPatch) Empty() bool { return p.Set&AllChannels == 0 }

// Apply merges the patch onto base and clamps the result.
func (p ColorPatch) Apply(base Color) Color {
	out := base
	if p.Set&ChanR != 0 {
		out.R = p.R
	}
	if p.Set&ChanG != 0 {
		out.G = p.G
	}
	if p.Set&ChanB != 0 {
		out.B = p.B
	}
	return out.Clamp()
}

// Clamp restricts every channel to [0,255].
func (c Color) Clamp() Color {
	return Color{R: clampInt(c.R, 0, 255), G: clampInt(c.G, 0, 255), B: clampInt(c.B, 0, 255)}
}

// Channel returns the named channel value.
func (c Color) Channel(name string) (int, bool) {
	switch name {
	case "r":
		return c.R, true
	case "g":
		return c.G, true
	case "b":
		return c.B, true
	}
	return 0, false
}

// ChannelValue rounds v and clamps it to [0,255]. NaN maps to 0.
func ChannelValue(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(clampFloat(math.Round(v), 0, 255))
}

// clampInt restricts v to [min, max].
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// clampFloat restricts v to [min, max].
func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
