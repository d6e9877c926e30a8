package render

type stencilKind uint8

const (
	stencilUniform stencilKind = iota
	stencilPerPixel
)

// stencilBlock holds the stencil values of one 8x8 block. A Uniform block
// stores a single value; PerPixel stores all 64. values is only meaningful
// for PerPixel blocks.
type stencilBlock struct {
	kind   stencilKind
	value  uint8
	values [64]uint8
}

func (b *stencilBlock) at(i int) uint8 {
	if b.kind == stencilUniform {
		return b.value
	}
	return b.values[i]
}

// equalTest clears mask bits whose stencil value differs from test.
func (b *stencilBlock) equalTest(test uint8, mask0, mask1 uint32) (uint32, uint32) {
	if b.kind == stencilUniform {
		if b.value != test {
			return 0, 0
		}
		return mask0, mask1
	}
	var m0, m1 uint32
	for i := range 32 {
		m0 <<= 1
		m1 <<= 1
		if b.values[i] == test {
			m0 |= 1
		}
		if b.values[i+32] == test {
			m1 |= 1
		}
	}
	return mask0 & m0, mask1 & m1
}

// write stores v at every masked pixel and recompresses the block when all
// 64 values end up equal.
func (b *stencilBlock) write(v uint8, mask0, mask1 uint32) {
	if mask0 == ^uint32(0) && mask1 == ^uint32(0) {
		b.kind, b.value = stencilUniform, v
		return
	}
	if mask0 == 0 && mask1 == 0 {
		return
	}
	if b.kind == stencilUniform {
		if b.value == v {
			return
		}
		for i := range b.values {
			b.values[i] = b.value
		}
		b.kind = stencilPerPixel
	}

	same := 0
	for i := range 32 {
		if mask0&(1<<(31-i)) != 0 {
			b.values[i] = v
		}
		if mask1&(1<<(31-i)) != 0 {
			b.values[i+32] = v
		}
	}
	for _, s := range b.values {
		if s == v {
			same++
		}
	}
	if same == 64 {
		b.kind, b.value = stencilUniform, v
	}
}

// StencilBuffer is an 8-bit stencil buffer organised as 8x8 blocks.
type StencilBuffer struct {
	width, height int
	pitch         int
	blocks        []stencilBlock
}

// NewStencilBuffer allocates a stencil buffer cleared to 0.
func NewStencilBuffer(width, height int) *StencilBuffer {
	pitch := (width + 7) / 8
	rows := (height + 7) / 8
	return &StencilBuffer{
		width:  width,
		height: height,
		pitch:  pitch,
		blocks: make([]stencilBlock, pitch*rows),
	}
}

// Clear sets every block to the uniform value v.
func (s *StencilBuffer) Clear(v uint8) {
	if s.pitch == 0 {
		return
	}
	s.clearRows(0, len(s.blocks)/s.pitch, v)
}

func (s *StencilBuffer) clearRows(by0, by1 int, v uint8) {
	for i := by0 * s.pitch; i < by1*s.pitch; i++ {
		s.blocks[i].kind = stencilUniform
		s.blocks[i].value = v
	}
}

// At returns the stencil value of pixel (x, y).
func (s *StencilBuffer) At(x, y int) uint8 {
	return s.block(x>>3, y>>3).at((y&7)*8 + x&7)
}

// Uniform reports the value of the block containing (x, y) and whether the
// block is stored compressed.
func (s *StencilBuffer) Uniform(x, y int) (uint8, bool) {
	b := s.block(x>>3, y>>3)
	return b.value, b.kind == stencilUniform
}

func (s *StencilBuffer) block(bx, by int) *stencilBlock {
	return &s.blocks[by*s.pitch+bx]
}
