// Package viewer implements the interactive field editor window and its
// frame loop.
package viewer

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/marchfield/internal/config"
	"github.com/Faultbox/marchfield/internal/engine/debug"
	"github.com/Faultbox/marchfield/internal/engine/input"
	"github.com/Faultbox/marchfield/internal/engine/renderer"
	"github.com/Faultbox/marchfield/internal/engine/window"
	"github.com/Faultbox/marchfield/internal/export"
	"github.com/Faultbox/marchfield/internal/logger"
)

// Viewer owns the window and drives a Session from keyboard and mouse input.
type Viewer struct {
	session  *Session
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input

	screenshots    *debug.ScreenshotCapture
	showGrid       bool
	wantScreenshot bool
}

// New opens the viewer window for cfg.
func New(cfg *config.Config) (*Viewer, error) {
	logger.Info("initializing viewer",
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.Int("chunk_size", cfg.Field.ChunkSize),
		zap.Float32("cutoff", cfg.Field.Cutoff),
	)

	v := &Viewer{
		session:     NewSession(cfg),
		input:       input.New(),
		screenshots: debug.NewScreenshotCapture(cfg.Export.OutputDir, "screenshot", export.Format(cfg.Export.Format)),
	}

	var err error
	v.window, err = window.New(window.Config{
		Title:      "marchfield",
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
		Samples:    4,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderer needs the OpenGL context the window created.
	width, height := v.window.GetSize()
	v.renderer, err = renderer.New(renderer.DefaultConfig(width, height))
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	v.renderer.Resize(width, height)

	logger.Info("viewer initialized")
	return v, nil
}

// Run runs the frame loop until the window is closed or Escape is pressed.
func (v *Viewer) Run() error {
	v.running = true

	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting frame loop")

	for v.running {
		if v.input.Update() {
			v.running = false
			break
		}

		v.handleInput()

		if err := v.update(); err != nil {
			return fmt.Errorf("update error: %w", err)
		}

		v.renderer.Begin()
		v.renderer.Draw()
		v.renderer.End()
		if v.wantScreenshot {
			v.captureScreenshot()
		}
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handleInput() {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			width, height := v.window.GetSize()
			v.renderer.Resize(width, height)
		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				v.running = false
			case sdl.SCANCODE_SPACE:
				v.session.Paint()
			case sdl.SCANCODE_EQUALS, sdl.SCANCODE_KP_PLUS:
				v.session.Zoom(0.5)
			case sdl.SCANCODE_MINUS, sdl.SCANCODE_KP_MINUS:
				v.session.Zoom(2)
			case sdl.SCANCODE_G:
				v.showGrid = !v.showGrid
				v.session.Touch()
			case sdl.SCANCODE_F12:
				v.wantScreenshot = true
			case sdl.SCANCODE_E:
				if _, err := v.session.ExportCurrent(); err != nil {
					logger.Warn("export failed", zap.Error(err))
				}
			}
		}
	}

	v.session.Step(v.input.ArrowDelta())

	if clicks := v.input.Clicks(); len(clicks) > 0 {
		// Mouse coordinates are in window points, the drawable may be larger.
		w, h := v.window.GetPointSize()
		for _, c := range clicks {
			v.session.PaintAt(v.session.ScreenToWorld(c[0], c[1], w, h))
		}
	}
}

// update rebuilds and uploads the mesh when the session changed.
func (v *Viewer) update() error {
	rebuilt, err := v.session.Rebuild()
	if err != nil {
		return err
	}
	if !rebuilt {
		return nil
	}
	v.renderer.SetView(v.session.HalfExtent())
	v.renderer.UploadMesh(v.session.Mesh())
	if v.showGrid {
		v.renderer.UploadLines(debug.Flatten(debug.ChunkGrid(v.session.Plane(), v.session.Reference())))
	} else {
		v.renderer.UploadLines(nil)
	}
	v.window.SetTitle(v.session.Title())
	return nil
}

func (v *Viewer) captureScreenshot() {
	v.wantScreenshot = false
	pixels, w, h := v.renderer.ReadPixels()
	path, err := v.screenshots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

// Close releases the window and renderer.
func (v *Viewer) Close() {
	logger.Info("closing viewer")

	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
