package render

// Surface is the minimum a drawing target must support. Everything the
// performance tier needs is here.
type Surface interface {
	Size() (int, int)
	Clear(c Color)
	FillCircle(x, y, r float64, c Color)
	StrokeCircle(x, y, r, width float64, c Color)
}

// GlowSurface adds the gradient and additive compositing the quality tier
// needs. Surfaces that cannot provide it are rendered in performance tier.
type GlowSurface interface {
	Surface
	FillGradient(g *Gradient)
	// GlowCircle fills a radial falloff from c at the centre to transparent
	// at r.
	GlowCircle(x, y, r float64, c Color)
	BeginAdditive()
	EndAdditive()
}

// Gradient is a radial background wash. Key identifies the inputs it was
// built from.
type Gradient struct {
	CX, CY float64
	Radius float64
	Inner  Color
	Outer  Color
	Key    GradientKey
}

type GradientKey struct {
	Brightness int
	Width      int
	Height     int
}
