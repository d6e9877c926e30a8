package render

import "sync"

// Tables groups the process lifetime lookup tables a draw may need.
type Tables struct {
	Palette  *PaletteTables
	Fuzz     *FuzzTable
	Identity *Translation
}

// NewTables builds palette and fuzz tables.
func NewTables(pal [256]uint32, fuzzSeed uint64) *Tables {
	p := NewPaletteTables(pal)
	var remap [256]uint8
	for i := range remap {
		remap[i] = uint8(i)
	}
	return &Tables{
		Palette:  p,
		Fuzz:     NewFuzzTable(fuzzSeed),
		Identity: NewTranslation(remap, p),
	}
}

// DefaultTables returns tables for DefaultPalette, built on first use.
var DefaultTables = sync.OnceValue(func() *Tables {
	return NewTables(DefaultPalette(), 1)
})
