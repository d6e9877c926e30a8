package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"

	"github.com/taigrr/polyraster/internal/config"
	"github.com/taigrr/polyraster/pkg/math3d"
	"github.com/taigrr/polyraster/pkg/models"
	"github.com/taigrr/polyraster/pkg/render"
	"github.com/taigrr/polyraster/pkg/scene"
)

const (
	background = 0xff1e1e28
	floorY     = -1.2
	floorSize  = 4
)

// viewer owns the scene and the render targets.
type viewer struct {
	cfg    config.Config
	format render.PixelFormat
	tables *render.Tables
	queue  *render.Queue

	camera *scene.Camera
	light  *lightOrbit
	spin   float32

	mesh      *models.Mesh
	verts     []render.TriVertex
	indices   []uint32
	meshArgs  render.DrawArgs
	floor     []render.TriVertex
	floorArgs render.DrawArgs
	markArgs  render.RectDrawArgs

	fb      *render.Framebuffer
	depth   *render.DepthBuffer
	stencil *render.StencilBuffer
	bgIndex uint8
}

func newViewer(cfg config.Config) (*viewer, error) {
	format, err := cfg.PixelFormat()
	if err != nil {
		return nil, err
	}
	blend, err := cfg.BlendMode()
	if err != nil {
		return nil, err
	}

	v := &viewer{
		cfg:    cfg,
		format: format,
		tables: render.DefaultTables(),
		camera: scene.NewCamera(float32(cfg.Width) / float32(cfg.Height)),
		light:  newLightOrbit(cfg.FPS),
	}
	v.queue = render.NewQueue(v.tables, nil)
	v.bgIndex = v.tables.Palette.Match(background)

	tex, err := v.loadModel()
	if err != nil {
		return nil, err
	}
	if cfg.Texture != "" {
		if tex, err = render.LoadTexture(cfg.Texture); err != nil {
			return nil, err
		}
	}
	if tex == nil {
		tex = render.NewCheckerTexture(64, 64, 8, 0xffc8c8c8, 0xff646464)
	}
	floorTex := render.NewCheckerTexture(64, 64, 16, 0xff406040, 0xff203020)
	if format == render.FormatPal8 {
		tex.Quantize(v.tables.Palette)
		floorTex.Quantize(v.tables.Palette)
	}

	v.fitMesh()
	v.verts, v.indices = v.mesh.TriVertices()

	v.meshArgs = v.litArgs(tex)
	v.meshArgs.SetStyle(blend, float32(cfg.Alpha)/256)
	v.floorArgs = v.litArgs(floorTex)
	v.floor = []render.TriVertex{
		{X: -floorSize, Y: floorY, Z: floorSize, W: 1, U: 0, V: 4},
		{X: floorSize, Y: floorY, Z: floorSize, W: 1, U: 4, V: 4},
		{X: floorSize, Y: floorY, Z: -floorSize, W: 1, U: 4, V: 0},
		{X: -floorSize, Y: floorY, Z: -floorSize, W: 1, U: 0, V: 0},
	}
	v.markArgs = render.NewRectDrawArgs(0, 0, 0, 0)
	v.markArgs.Blend = render.BlendAdd
	v.markArgs.Color = cfg.DynLightColor | 0xff000000
	if cfg.DynLightColor == 0 {
		v.markArgs.Color = 0xffffffc0
	}

	v.resize(cfg.Width, cfg.Height)
	render.Logger().Debug("viewer ready",
		"model", v.mesh.Name, "triangles", v.mesh.TriangleCount(),
		"format", format, "blend", blend, "threads", cfg.Threads)
	return v, nil
}

// loadModel loads the configured model, or the built-in cube, and returns
// its first embedded texture.
func (v *viewer) loadModel() (*render.Texture, error) {
	if v.cfg.Model == "" {
		v.mesh = models.Cube()
		return nil, nil
	}
	switch ext := strings.ToLower(filepath.Ext(v.cfg.Model)); ext {
	case ".glb", ".gltf":
	default:
		return nil, fmt.Errorf("unsupported model format %s (use .glb or .gltf)", ext)
	}
	mesh, textures, err := models.NewGLTFLoader().Load(v.cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	v.mesh = mesh
	for _, m := range mesh.Materials {
		if m.Texture >= 0 && m.Texture < len(textures) && textures[m.Texture] != nil {
			return textures[m.Texture], nil
		}
	}
	for _, t := range textures {
		if t != nil {
			return t, nil
		}
	}
	return nil, nil
}

// fitMesh centers the mesh and scales its largest dimension to 2.
func (v *viewer) fitMesh() {
	size := v.mesh.Size()
	maxDim := math32.Max(size.X, math32.Max(size.Y, size.Z))
	if maxDim <= 0 {
		return
	}
	s := 2 / maxDim
	v.mesh.Transform(math3d.Scale(math3d.V3(s, s, s)).Mul(math3d.Translate(v.mesh.Center().Scale(-1))))
}

func (v *viewer) litArgs(tex *render.Texture) render.DrawArgs {
	a := render.NewDrawArgs()
	a.Texture = tex
	a.Light = v.cfg.Light
	a.GlobVis = v.cfg.GlobVis
	a.FixedLight = v.cfg.FixedLight
	a.Fog = v.cfg.Fog()
	a.SetDepthTest(true)
	return a
}

// resize reallocates the render targets.
func (v *viewer) resize(width, height int) {
	v.fb = render.NewFramebuffer(width, height, v.format)
	v.fb.Palette = v.tables.Palette
	v.depth = render.NewDepthBuffer(width, height)
	v.stencil = render.NewStencilBuffer(width, height)
	v.camera.Aspect = float32(width) / float32(height)
}

// cycleBlend advances the model to the next blend mode.
func (v *viewer) cycleBlend() render.BlendMode {
	next := v.meshArgs.Blend + 1
	if !next.Valid() {
		next = 0
	}
	alpha := float32(v.cfg.Alpha) / 256
	if alpha >= 1 {
		alpha = 0.5
	}
	v.meshArgs.SetStyle(next, alpha)
	return next
}

// step advances the animation by one frame.
func (v *viewer) step() {
	v.light.Update()
	v.spin += 0.5 / float32(v.cfg.FPS)
}

// record queues one frame.
func (v *viewer) record() {
	q := v.queue
	q.Reset()

	lightPos := v.light.Position()
	l := render.Light{X: lightPos.X, Y: lightPos.Y, Z: lightPos.Z, Radius: -v.cfg.LightRadius, Color: v.markArgs.Color}
	lights := []render.Light{l}
	v.meshArgs.Lights = lights
	v.meshArgs.DynLightColor = 0x202020
	v.floorArgs.Lights = lights
	v.floorArgs.DynLightColor = 0x202020

	q.SetViewport(0, 0, v.fb.Width, v.fb.Height, v.fb, v.cfg.ViewportOptions()...)
	q.SetDepthStencil(v.depth, v.stencil)
	q.ClearBuffers(0, 0)

	vp := v.camera.ViewProjection()
	frustum := scene.NewFrustum(vp)

	q.SetCullCCW(true)
	q.SetTransform(vp, math3d.Identity())
	q.DrawArray(&v.floorArgs, v.floor, render.TriangleFan)

	model := math3d.RotateY(v.spin)
	bounds := scene.AABB{Min: v.mesh.BoundsMin, Max: v.mesh.BoundsMax}.Transform(model)
	if frustum.Intersects(bounds) {
		q.SetTwoSided(v.meshArgs.Blend != render.BlendOpaque)
		q.SetTransform(vp.Mul(model), model)
		q.DrawElements(&v.meshArgs, v.verts, v.indices, render.Triangles)
	}

	clip := vp.MulVec4(math3d.Point(lightPos))
	if clip.W > 0 {
		x := (1 + clip.X/clip.W) * 0.5 * float32(v.fb.Width)
		y := (1 - clip.Y/clip.W) * 0.5 * float32(v.fb.Height)
		m := v.markArgs
		m.X0, m.Y0, m.X1, m.Y1 = x-1.5, y-1.5, x+1.5, y+1.5
		q.DrawRect(m)
	}
}

// frame renders one frame into the framebuffer.
func (v *viewer) frame(ctx context.Context) error {
	v.fb.Clear(background, v.bgIndex)
	v.record()
	return v.queue.Run(ctx, v.cfg.Threads)
}

// renderFile simulates the configured frame count and writes the last.
func (v *viewer) renderFile(ctx context.Context, path string) error {
	for range v.cfg.Frames {
		v.step()
		if err := v.frame(ctx); err != nil {
			return err
		}
	}
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".webp":
		err = v.fb.SaveWebP(path)
	default:
		err = v.fb.SavePNG(path)
	}
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	render.Logger().Debug("frame written", "path", path, "width", v.fb.Width, "height", v.fb.Height)
	return nil
}
