package main

import (
	"context"
	"fmt"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/polyraster/pkg/render"
)

// runTerminal shows the viewer in the alternate screen until Esc or ctx
// is done. Each cell shows two framebuffer rows.
func runTerminal(ctx context.Context, v *viewer) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	defer func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Events only queue state changes; the render loop applies them so
	// the viewer is never touched concurrently with a running frame.
	inputs := make(chan func(), 16)
	go func() {
		for ev := range term.Events() {
			var f func()
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				w, h := ev.Width, ev.Height
				f = func() {
					width, height = w, h
					term.Erase()
					term.Resize(width, height)
					v.resize(width, height*2)
				}
			case uv.KeyPressEvent:
				f = keyAction(ev, v, cancel)
			}
			if f == nil {
				continue
			}
			select {
			case inputs <- f:
			case <-ctx.Done():
				return
			}
		}
	}()

	v.resize(width, height*2)
	targetDuration := time.Second / time.Duration(v.cfg.FPS)
	for {
		now := time.Now()
	drain:
		for {
			select {
			case <-ctx.Done():
				return nil
			case f := <-inputs:
				f()
			default:
				break drain
			}
		}

		v.step()
		if err := v.frame(ctx); err != nil {
			return err
		}
		v.fb.Draw(term, uv.Rect(0, 0, width, height))
		if err := term.Display(); err != nil {
			return fmt.Errorf("display: %w", err)
		}

		if elapsed := time.Since(now); elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}

func keyAction(ev uv.KeyPressEvent, v *viewer, cancel context.CancelFunc) func() {
	const orbitStep = 0.08
	switch {
	case ev.MatchString("escape", "ctrl+c"):
		cancel()
	case ev.MatchString("a", "left"):
		return func() { v.camera.Orbit(-orbitStep, 0) }
	case ev.MatchString("d", "right"):
		return func() { v.camera.Orbit(orbitStep, 0) }
	case ev.MatchString("up"):
		return func() { v.camera.Orbit(0, orbitStep) }
	case ev.MatchString("down"):
		return func() { v.camera.Orbit(0, -orbitStep) }
	case ev.MatchString("w"):
		return func() { v.light.Raise(0.25) }
	case ev.MatchString("s"):
		return func() { v.light.Raise(-0.25) }
	case ev.MatchString("+", "="):
		return func() { v.camera.Zoom(0.9) }
	case ev.MatchString("-", "_"):
		return func() { v.camera.Zoom(1.1) }
	case ev.MatchString("space"):
		return func() { v.light.Paused = !v.light.Paused }
	case ev.MatchString("b"):
		return func() {
			mode := v.cycleBlend()
			render.Logger().Debug("blend mode", "mode", mode)
		}
	}
	return nil
}
