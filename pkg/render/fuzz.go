package render

import "math/rand/v2"

const (
	fuzzTableSize   = 50
	fuzzRandomXSize = 100
)

// Doom's column offset pattern, turned into darkening amounts out of 32.
var fuzzPattern = [fuzzTableSize]int8{
	1, -1, 1, -1, 1, 1, -1, 1, 1, -1, 1, 1, 1, -1, 1, 1, 1, -1, -1, -1,
	-1, 1, -1, -1, 1, 1, 1, 1, -1, 1, -1, 1, 1, -1, -1, 1, 1, -1, -1, -1,
	-1, 1, 1, 1, 1, -1, 1, 1, -1, 1,
}

// FuzzTable drives the fuzz (dissolve) blend mode. It is immutable after
// NewFuzzTable returns.
type FuzzTable struct {
	Offsets [fuzzTableSize]uint8 // 0..32, how much of the destination survives
	RandomX [fuzzRandomXSize]int // per column start offsets into Offsets
}

// NewFuzzTable builds a table whose column offsets are drawn from seed, so
// equal seeds give identical output.
func NewFuzzTable(seed uint64) *FuzzTable {
	f := &FuzzTable{}
	for i, s := range fuzzPattern {
		if s > 0 {
			f.Offsets[i] = 20
		} else {
			f.Offsets[i] = 12
		}
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := range f.RandomX {
		f.RandomX[i] = rng.IntN(fuzzRandomXSize)
	}
	return f
}

// at returns the surviving fraction of the destination, out of 32, for
// pixel (x, y). scale is 16.16 and maps the viewport to a 200 line screen.
func (f *FuzzTable) at(x, y, pos, scale int) uint32 {
	sx := (x * scale) >> 16
	sy := (y * scale) >> 16
	i := (f.RandomX[sx%fuzzRandomXSize] + sy + pos) % fuzzTableSize
	if i < 0 {
		i += fuzzTableSize
	}
	return uint32(f.Offsets[i])
}
