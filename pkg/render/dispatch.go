package render

import (
	"fmt"
	"sync"
)

// DispatchTable maps every blend mode to its span and rect drawers for each
// pixel format. It is immutable after construction and safe to share.
type DispatchTable struct {
	span32 [numBlendModes]spanFunc
	span8  [numBlendModes]spanFunc
	rect32 [numBlendModes]rectFunc
	rect8  [numBlendModes]rectFunc
}

// NewDispatchTable builds the drawers for every blend mode. A missing entry
// is a programming error and panics here rather than at draw time.
func NewDispatchTable() *DispatchTable {
	d := &DispatchTable{}
	for m := range numBlendModes {
		s := blendStyles[m]
		d.span32[m] = newSpan32(s)
		d.span8[m] = newSpan8(s)
		d.rect32[m] = newRect32(s)
		d.rect8[m] = newRect8(s)
	}
	for m := range numBlendModes {
		if d.span32[m] == nil || d.span8[m] == nil || d.rect32[m] == nil || d.rect8[m] == nil {
			panic(fmt.Sprintf("render: dispatch table missing drawer for %v", m))
		}
	}
	return d
}

// DefaultDispatch returns a shared table, built on first use.
var DefaultDispatch = sync.OnceValue(NewDispatchTable)

func (d *DispatchTable) span(f PixelFormat, m BlendMode) spanFunc {
	if f == FormatPal8 {
		return d.span8[m]
	}
	return d.span32[m]
}

func (d *DispatchTable) rect(f PixelFormat, m BlendMode) rectFunc {
	if f == FormatPal8 {
		return d.rect8[m]
	}
	return d.rect32[m]
}
