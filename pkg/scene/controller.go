package scene

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/taigrr/cheer/pkg/math3d"
	"github.com/taigrr/cheer/pkg/models"
	"github.com/taigrr/cheer/pkg/render"
)

// ErrRunning is returned by Run when the controller is already running.
var ErrRunning = errors.New("controller already running")

var wireframeColor = render.RGB(0, 255, 128)

// Event is an input delivered to Run.
type Event interface{ isEvent() }

// PointerMoved is a pointer position in surface pixels.
type PointerMoved struct{ X, Y float64 }

// Resized is a new surface size in pixels.
type Resized struct{ Width, Height int }

// ToggleWireframe flips between lit and wireframe drawing.
type ToggleWireframe struct{}

func (PointerMoved) isEvent()    {}
func (Resized) isEvent()         {}
func (ToggleWireframe) isEvent() {}

// LoadStatus is the progress of the model load.
type LoadStatus int

const (
	LoadPending LoadStatus = iota
	LoadDone
	LoadFailed
)

func (s LoadStatus) String() string {
	switch s {
	case LoadDone:
		return "loaded"
	case LoadFailed:
		return "failed"
	default:
		return "loading"
	}
}

// MaxFPS bounds Options.FPS.
const MaxFPS = 1000

// Options configures a Controller.
type Options struct {
	Width, Height int // initial surface size in pixels
	FPS           int // clamped to 1..MaxFPS
	FOV           float64 // vertical, degrees
	Near, Far     float64
	CameraZ       float64
	Background    render.Color
	Placement     Placement
	Load          LoadFunc
}

// DefaultOptions returns the stock camera and placement for a surface.
func DefaultOptions(width, height int) Options {
	return Options{
		Width:      width,
		Height:     height,
		FPS:        60,
		FOV:        75,
		Near:       0.1,
		Far:        1000,
		CameraZ:    5,
		Background: Background,
		Placement:  DefaultPlacement(),
	}
}

// Stats describes the current frame for overlays.
type Stats struct {
	Name      string
	Polys     int
	Status    LoadStatus
	Wireframe bool
	Culled    bool
}

type loadResult struct {
	mesh *models.Mesh
	img  image.Image
	err  error
}

// Controller owns the scene state. Everything except construction happens
// on the goroutine that calls Run, or before Run is started.
type Controller struct {
	log   zerolog.Logger
	opts  Options
	scene *Scene

	camera     *render.Camera
	fb         *render.Framebuffer
	rasterizer *render.Rasterizer
	viewport   Viewport

	wireframe bool
	status    LoadStatus

	loaded chan loadResult
	alive  atomic.Bool
	loadMu sync.Mutex // orders a load's send against teardown
}

// New creates the scene, camera and surface. The model is loaded when Run
// starts.
func New(opts Options, log zerolog.Logger) *Controller {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	opts.FPS = min(opts.FPS, MaxFPS)
	c := &Controller{
		log:    log.With().Str("component", "scene").Logger(),
		opts:   opts,
		scene:  NewScene(opts.Background),
		camera: render.NewCamera(),
		fb:     render.NewFramebuffer(opts.Width, opts.Height),
		loaded: make(chan loadResult, 1),
	}
	c.camera.SetFOVDegrees(opts.FOV)
	c.camera.SetClipPlanes(opts.Near, opts.Far)
	c.camera.SetPosition(math3d.V3(0, 0, opts.CameraZ))
	c.camera.LookAt(math3d.Zero3())
	c.rasterizer = render.NewRasterizer(c.camera, c.fb)
	c.HandleResize(opts.Width, opts.Height)
	return c
}

// Scene returns the controlled scene.
func (c *Controller) Scene() *Scene { return c.scene }

// Camera returns the scene camera.
func (c *Controller) Camera() *render.Camera { return c.camera }

// Framebuffer returns the render surface.
func (c *Controller) Framebuffer() *render.Framebuffer { return c.fb }

// Viewport returns the current surface size.
func (c *Controller) Viewport() Viewport { return c.viewport }

// Alive reports whether Run is active.
func (c *Controller) Alive() bool { return c.alive.Load() }

// HandlePointer turns the model toward a pointer at surface pixel (px, py).
// It does nothing until a model is attached.
func (c *Controller) HandlePointer(px, py float64) {
	m := c.scene.Model()
	if m == nil {
		c.log.Debug().Float64("x", px).Float64("y", py).Msg("pointer moved before model loaded")
		return
	}
	m.Orient(Normalize(px, py, c.viewport))
}

// HandleResize resizes the surface to width x height and updates the camera
// aspect. Non-positive sizes are ignored.
func (c *Controller) HandleResize(width, height int) {
	if width <= 0 || height <= 0 {
		c.log.Debug().Int("width", width).Int("height", height).Msg("ignoring empty resize")
		return
	}
	c.viewport = Viewport{Width: width, Height: height}
	c.fb.Resize(width, height)
	c.rasterizer.Resize()
	c.camera.SetAspectRatio(c.viewport.Aspect())
}

// Handle applies one event.
func (c *Controller) Handle(ev Event) {
	switch ev := ev.(type) {
	case PointerMoved:
		c.HandlePointer(ev.X, ev.Y)
	case Resized:
		c.HandleResize(ev.Width, ev.Height)
	case ToggleWireframe:
		c.wireframe = !c.wireframe
	}
}

// Stats returns what the last frame drew.
func (c *Controller) Stats() Stats {
	s := Stats{
		Status:    c.status,
		Wireframe: c.wireframe,
		Culled:    c.rasterizer.Culled > 0,
	}
	if m := c.scene.Model(); m != nil {
		s.Name = m.Name
		s.Polys = m.Mesh.TriangleCount()
	}
	return s
}

// RenderFrame draws the scene into the framebuffer and returns it.
func (c *Controller) RenderFrame() *render.Framebuffer {
	c.fb.Clear(c.scene.Background)
	c.rasterizer.ClearDepth()

	m := c.scene.Model()
	if m == nil {
		return c.fb
	}
	if c.wireframe {
		c.rasterizer.DrawMeshWireframe(m.Mesh, m.Transform(), wireframeColor)
	} else {
		c.rasterizer.DrawMeshLit(m.Mesh, m.Transform(), m.Texture, c.scene.Rig)
	}
	return c.fb
}

// Run loads the model in the background and redraws at the configured FPS,
// handing each frame to present. It returns when ctx is done or events is
// closed; a load that finishes after that is discarded.
func (c *Controller) Run(ctx context.Context, events <-chan Event, present func(*render.Framebuffer) error) error {
	if !c.alive.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer c.teardown()

	loadCtx, cancelLoad := context.WithCancel(ctx)
	defer cancelLoad()
	if c.opts.Load != nil && c.status == LoadPending && c.scene.Model() == nil {
		go c.load(loadCtx)
	}

	ticker := time.NewTicker(time.Second / time.Duration(c.opts.FPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			c.Handle(ev)
		case res := <-c.loaded:
			if err := c.applyLoad(res); err != nil {
				c.log.Warn().Err(err).Msg("model load failed")
			}
		case <-ticker.C:
			if err := present(c.RenderFrame()); err != nil {
				return fmt.Errorf("present frame: %w", err)
			}
		}
	}
}

// teardown marks the controller stopped and discards a load result that
// arrived after the loop stopped reading.
func (c *Controller) teardown() {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	c.alive.Store(false)
	select {
	case <-c.loaded:
		c.log.Debug().Msg("discarding model load buffered at teardown")
	default:
	}
}

func (c *Controller) load(ctx context.Context) {
	mesh, img, err := c.opts.Load(ctx)

	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	if !c.alive.Load() {
		c.log.Debug().Msg("dropping model load after teardown")
		return
	}
	select {
	case c.loaded <- loadResult{mesh: mesh, img: img, err: err}:
	default:
	}
}

// LoadNow runs the loader on the calling goroutine and attaches the result.
// It is for headless use and must not be called while Run is active.
func (c *Controller) LoadNow(ctx context.Context) error {
	if c.opts.Load == nil {
		return errors.New("no model loader configured")
	}
	mesh, img, err := c.opts.Load(ctx)
	return c.applyLoad(loadResult{mesh: mesh, img: img, err: err})
}

func (c *Controller) applyLoad(res loadResult) error {
	if res.err != nil {
		c.status = LoadFailed
		return res.err
	}

	var tex *render.Texture
	if res.img != nil {
		tex = render.TextureFromImage(res.img)
	}
	m := NewModel(res.mesh.Name, res.mesh, tex, c.opts.Placement)
	if err := c.scene.Attach(m); err != nil {
		return err
	}
	c.status = LoadDone
	c.log.Info().
		Str("model", m.Name).
		Int("vertices", res.mesh.VertexCount()).
		Int("triangles", res.mesh.TriangleCount()).
		Bool("textured", tex != nil).
		Msg("model loaded")
	return nil
}
