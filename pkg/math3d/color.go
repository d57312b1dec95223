package math3d

// ColorF is an ARGB color with one float per channel, each in [0,255].
type ColorF struct {
	A, R, G, B float64
}

// ColorFromARGB unpacks an ARGB8888 value.
func ColorFromARGB(c uint32) ColorF {
	return ColorF{
		A: float64(c >> 24),
		R: float64((c >> 16) & 0xff),
		G: float64((c >> 8) & 0xff),
		B: float64(c & 0xff),
	}
}

// ColorFromRGBA converts normalized [0,1] RGBA floats, as found in glTF
// material factors.
func ColorFromRGBA(rgba [4]float64) ColorF {
	return ColorF{A: rgba[3], R: rgba[0], G: rgba[1], B: rgba[2]}.Scale(255)
}

// ARGB packs the color back into ARGB8888. Channels are truncated and
// saturate at 0 and 255.
func (c ColorF) ARGB() uint32 {
	return channel(c.A)<<24 | channel(c.R)<<16 | channel(c.G)<<8 | channel(c.B)
}

func channel(v float64) uint32 {
	switch {
	case !(v > 0):
		return 0
	case v >= 255:
		return 255
	default:
		return uint32(v)
	}
}

// Add returns the channel-wise sum.
func (c ColorF) Add(o ColorF) ColorF {
	return ColorF{c.A + o.A, c.R + o.R, c.G + o.G, c.B + o.B}
}

// Sub returns the channel-wise difference.
func (c ColorF) Sub(o ColorF) ColorF {
	return ColorF{c.A - o.A, c.R - o.R, c.G - o.G, c.B - o.B}
}

// Scale multiplies all four channels, alpha included, by s.
func (c ColorF) Scale(s float64) ColorF {
	return ColorF{c.A * s, c.R * s, c.G * s, c.B * s}
}

// Div divides all four channels by s.
func (c ColorF) Div(s float64) ColorF {
	return ColorF{c.A / s, c.R / s, c.G / s, c.B / s}
}
