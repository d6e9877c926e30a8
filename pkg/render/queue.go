package render

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/polyraster/pkg/math3d"
)

// Command is one recorded call replayed by every worker.
type Command interface {
	Execute(t *ThreadData)
}

// Queue records the draw calls of a frame and replays them on a pool of
// workers. Commands run in recorded order on every worker. Within one
// raster mode every draw path hands out rows through ThreadData.owns, so
// workers never touch the same pixel. Switching raster mode changes which
// worker owns a row, so SetViewport records a barrier whenever the mode
// changes; Barrier records one explicitly.
type Queue struct {
	tables   *Tables
	dispatch *DispatchTable
	cmds     []Command
	scanline bool
}

// barrier makes every worker finish the commands before it before any
// worker starts the commands after it.
type barrier struct{}

func (barrier) Execute(*ThreadData) {}

// NewQueue creates an empty queue. Nil tables or dispatch select the
// shared defaults.
func NewQueue(tables *Tables, dispatch *DispatchTable) *Queue {
	if tables == nil {
		tables = DefaultTables()
	}
	if dispatch == nil {
		dispatch = DefaultDispatch()
	}
	return &Queue{tables: tables, dispatch: dispatch}
}

// Len returns the number of recorded commands.
func (q *Queue) Len() int { return len(q.cmds) }

// Reset drops every recorded command, keeping the allocation.
func (q *Queue) Reset() {
	clear(q.cmds)
	q.cmds = q.cmds[:0]
	q.scanline = false
}

// Barrier records a point every worker must reach before any continues.
func (q *Queue) Barrier() { q.Push(barrier{}) }

// Push records a custom command.
func (q *Queue) Push(c Command) { q.cmds = append(q.cmds, c) }

type commandFunc func(t *ThreadData)

func (f commandFunc) Execute(t *ThreadData) { f(t) }

// SetViewport records ThreadData.SetViewport, preceded by a barrier when
// the raster mode differs from the previous viewport's.
func (q *Queue) SetViewport(x, y, width, height int, dest *Framebuffer, opts ...ViewportOption) {
	if o := resolveViewportOptions(opts); o.scanline != q.scanline {
		q.Barrier()
		q.scanline = o.scanline
	}
	q.Push(commandFunc(func(t *ThreadData) { t.SetViewport(x, y, width, height, dest, opts...) }))
}

// SetDepthStencil records ThreadData.SetDepthStencil.
func (q *Queue) SetDepthStencil(depth *DepthBuffer, stencil *StencilBuffer) {
	q.Push(commandFunc(func(t *ThreadData) { t.SetDepthStencil(depth, stencil) }))
}

// SetTransform records ThreadData.SetTransform.
func (q *Queue) SetTransform(objectToClip, objectToWorld math3d.Mat4) {
	q.Push(commandFunc(func(t *ThreadData) { t.SetTransform(objectToClip, objectToWorld) }))
}

// SetCullCCW records ThreadData.SetCullCCW.
func (q *Queue) SetCullCCW(ccw bool) {
	q.Push(commandFunc(func(t *ThreadData) { t.SetCullCCW(ccw) }))
}

// SetTwoSided records ThreadData.SetTwoSided.
func (q *Queue) SetTwoSided(twoSided bool) {
	q.Push(commandFunc(func(t *ThreadData) { t.SetTwoSided(twoSided) }))
}

// ClearBuffers records ThreadData.ClearBuffers.
func (q *Queue) ClearBuffers(depth float32, stencil uint8) {
	q.Push(commandFunc(func(t *ThreadData) { t.ClearBuffers(depth, stencil) }))
}

// DrawArray records a draw. args and vertices are retained, not copied,
// and must not change until Run returns.
func (q *Queue) DrawArray(args *DrawArgs, vertices []TriVertex, mode DrawMode) {
	q.Push(commandFunc(func(t *ThreadData) { t.DrawArray(args, vertices, mode) }))
}

// DrawElements records an indexed draw. The same lifetime rules as
// DrawArray apply.
func (q *Queue) DrawElements(args *DrawArgs, vertices []TriVertex, indices []uint32, mode DrawMode) {
	q.Push(commandFunc(func(t *ThreadData) { t.DrawElements(args, vertices, indices, mode) }))
}

// DrawRect records a rectangle draw.
func (q *Queue) DrawRect(args RectDrawArgs) {
	q.Push(commandFunc(func(t *ThreadData) { t.DrawRect(&args) }))
}

// segments splits the commands at barriers.
func (q *Queue) segments() [][]Command {
	var segs [][]Command
	start := 0
	for i, c := range q.cmds {
		if _, ok := c.(barrier); ok {
			segs = append(segs, q.cmds[start:i])
			start = i + 1
		}
	}
	return append(segs, q.cmds[start:])
}

// Run replays the queue on numThreads workers and waits for them. The
// context is checked between commands; a command that has started always
// finishes. A panicking worker is reported as an error.
func (q *Queue) Run(ctx context.Context, numThreads int) error {
	numThreads = max(numThreads, 1)
	start := time.Now()

	threads := make([]*ThreadData, numThreads)
	for core := range threads {
		threads[core] = NewThreadData(core, numThreads, q.tables, q.dispatch)
	}
	segs := q.segments()
	var err error
	for _, seg := range segs {
		if err = runSegment(ctx, threads, seg); err != nil {
			break
		}
	}
	Logger().Debug("queue run",
		"commands", len(q.cmds),
		"segments", len(segs),
		"threads", numThreads,
		"elapsed", time.Since(start),
		"err", err)
	if err != nil {
		return fmt.Errorf("run queue: %w", err)
	}
	return nil
}

func runSegment(ctx context.Context, threads []*ThreadData, cmds []Command) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, t := range threads {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("render worker %d: %v", t.core, r)
				}
			}()
			for _, c := range cmds {
				if err := ctx.Err(); err != nil {
					return err
				}
				c.Execute(t)
			}
			return nil
		})
	}
	return g.Wait()
}
