package render

import (
	"fmt"
	"strings"
)

// BlendMode selects how a primitive's pixels are combined with the
// destination. The set is closed; every value below numBlendModes has an
// entry in each dispatch table.
type BlendMode uint8

const (
	BlendOpaque BlendMode = iota
	BlendSkycap
	BlendFogBoundary
	BlendSrcColor
	BlendFill
	BlendNormal
	BlendFuzzy
	BlendStencil
	BlendTranslucent
	BlendAdd
	BlendShaded
	BlendTranslucentStencil
	BlendShadow
	BlendSubtract
	BlendReverseSubtract
	BlendAddStencil
	BlendAddShaded
	BlendOpaqueTranslated
	BlendSrcColorTranslated
	BlendNormalTranslated
	BlendStencilTranslated
	BlendTranslucentTranslated
	BlendAddTranslated
	BlendShadedTranslated
	BlendTranslucentStencilTranslated
	BlendShadowTranslated
	BlendSubtractTranslated
	BlendReverseSubtractTranslated
	BlendAddStencilTranslated
	BlendAddShadedTranslated

	numBlendModes
)

var blendModeNames = [numBlendModes]string{
	"opaque", "skycap", "fogboundary", "srccolor", "fill", "normal", "fuzzy",
	"stencil", "translucent", "add", "shaded", "translucentstencil", "shadow",
	"subtract", "revsubtract", "addstencil", "addshaded",
	"opaque-translated", "srccolor-translated", "normal-translated",
	"stencil-translated", "translucent-translated", "add-translated",
	"shaded-translated", "translucentstencil-translated", "shadow-translated",
	"subtract-translated", "revsubtract-translated", "addstencil-translated",
	"addshaded-translated",
}

func (m BlendMode) String() string {
	if m < numBlendModes {
		return blendModeNames[m]
	}
	return fmt.Sprintf("BlendMode(%d)", uint8(m))
}

// Valid reports whether m is one of the enumerated modes.
func (m BlendMode) Valid() bool {
	return m < numBlendModes
}

// ParseBlendMode looks a mode up by the name String returns.
func ParseBlendMode(name string) (BlendMode, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range blendModeNames {
		if n == name {
			return BlendMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown blend mode %q", name)
}

type blendOp uint8

const (
	opAdd    blendOp = iota
	opSub            // dest - src
	opRevSub         // src - dest
	opFuzz
)

type blendFactor uint8

const (
	factorOne blendFactor = iota
	factorZero
	factorSrcAlpha
	factorInvSrcAlpha
)

type styleFlags uint16

const (
	flagAlpha1 styleFlags = 1 << iota
	flagColorIsFixed
	flagRedIsAlpha
	flagTranslated
	flagFill
	flagSkycap
	flagFogBoundary
	flagSrcColor
)

// blendStyle describes one BlendMode. Dispatch tables are generated from it
// once, so nothing in the per pixel loop switches on the mode.
type blendStyle struct {
	op    blendOp
	src   blendFactor
	dst   blendFactor
	flags styleFlags
}

func (s blendStyle) has(f styleFlags) bool { return s.flags&f != 0 }

var blendStyles = func() [numBlendModes]blendStyle {
	var t [numBlendModes]blendStyle
	base := map[BlendMode]blendStyle{
		BlendOpaque:             {opAdd, factorOne, factorZero, flagAlpha1},
		BlendSkycap:             {opAdd, factorOne, factorZero, flagAlpha1 | flagSkycap},
		BlendFogBoundary:        {opAdd, factorOne, factorZero, flagAlpha1 | flagFogBoundary},
		BlendSrcColor:           {opAdd, factorSrcAlpha, factorInvSrcAlpha, flagAlpha1 | flagSrcColor},
		BlendFill:               {opAdd, factorOne, factorZero, flagAlpha1 | flagFill},
		BlendNormal:             {opAdd, factorSrcAlpha, factorInvSrcAlpha, flagAlpha1},
		BlendFuzzy:              {opFuzz, factorSrcAlpha, factorInvSrcAlpha, 0},
		BlendStencil:            {opAdd, factorSrcAlpha, factorInvSrcAlpha, flagAlpha1 | flagColorIsFixed},
		BlendTranslucent:        {opAdd, factorSrcAlpha, factorInvSrcAlpha, 0},
		BlendAdd:                {opAdd, factorSrcAlpha, factorOne, 0},
		BlendShaded:             {opAdd, factorSrcAlpha, factorInvSrcAlpha, flagRedIsAlpha | flagColorIsFixed},
		BlendTranslucentStencil: {opAdd, factorSrcAlpha, factorInvSrcAlpha, flagColorIsFixed},
		BlendShadow:             {opAdd, factorSrcAlpha, factorInvSrcAlpha, flagColorIsFixed},
		BlendSubtract:           {opSub, factorSrcAlpha, factorOne, 0},
		BlendReverseSubtract:    {opRevSub, factorSrcAlpha, factorOne, 0},
		BlendAddStencil:         {opAdd, factorSrcAlpha, factorOne, flagColorIsFixed},
		BlendAddShaded:          {opAdd, factorSrcAlpha, factorOne, flagRedIsAlpha | flagColorIsFixed},
	}
	for m, s := range base {
		t[m] = s
	}
	translated := map[BlendMode]BlendMode{
		BlendOpaqueTranslated:             BlendOpaque,
		BlendSrcColorTranslated:           BlendSrcColor,
		BlendNormalTranslated:             BlendNormal,
		BlendStencilTranslated:            BlendStencil,
		BlendTranslucentTranslated:        BlendTranslucent,
		BlendAddTranslated:                BlendAdd,
		BlendShadedTranslated:             BlendShaded,
		BlendTranslucentStencilTranslated: BlendTranslucentStencil,
		BlendShadowTranslated:             BlendShadow,
		BlendSubtractTranslated:           BlendSubtract,
		BlendReverseSubtractTranslated:    BlendReverseSubtract,
		BlendAddStencilTranslated:         BlendAddStencil,
		BlendAddShadedTranslated:          BlendAddShaded,
	}
	for m, b := range translated {
		s := base[b]
		s.flags |= flagTranslated
		t[m] = s
	}
	return t
}()
