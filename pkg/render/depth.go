package render

// DepthBuffer stores reciprocal depth (1/w) per pixel, grouped in 8x8
// blocks so one block is 64 consecutive values. Larger values are nearer.
type DepthBuffer struct {
	width, height int
	pitch         int // in blocks
	values        []float32
}

// NewDepthBuffer allocates a depth buffer cleared to 0 (infinitely far).
func NewDepthBuffer(width, height int) *DepthBuffer {
	pitch := (width + 7) / 8
	rows := (height + 7) / 8
	return &DepthBuffer{
		width:  width,
		height: height,
		pitch:  pitch,
		values: make([]float32, pitch*rows*64),
	}
}

// Width returns the buffer width in pixels.
func (d *DepthBuffer) Width() int { return d.width }

// Height returns the buffer height in pixels.
func (d *DepthBuffer) Height() int { return d.height }

// Clear sets every value.
func (d *DepthBuffer) Clear(v float32) {
	for i := range d.values {
		d.values[i] = v
	}
}

// clearRows clears the block rows [by0, by1).
func (d *DepthBuffer) clearRows(by0, by1 int, v float32) {
	s := d.values[by0*d.pitch*64 : by1*d.pitch*64]
	for i := range s {
		s[i] = v
	}
}

// clearRow clears pixel row y.
func (d *DepthBuffer) clearRow(y int, v float32) {
	for bx := range d.pitch {
		row := d.block(bx, y>>3)[(y&7)*8:]
		for i := range blockSize {
			row[i] = v
		}
	}
}

// At returns the value for pixel (x, y).
func (d *DepthBuffer) At(x, y int) float32 {
	return *d.at(x, y)
}

func (d *DepthBuffer) at(x, y int) *float32 {
	return &d.block(x>>3, y>>3)[(y&7)*8+x&7]
}

func (d *DepthBuffer) block(bx, by int) []float32 {
	i := (by*d.pitch + bx) * 64
	return d.values[i : i+64 : i+64]
}
