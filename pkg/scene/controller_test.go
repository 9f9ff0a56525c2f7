package scene

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/cheer/pkg/math3d"
	"github.com/taigrr/cheer/pkg/models"
	"github.com/taigrr/cheer/pkg/render"
)

// triangleMesh is one triangle facing +Z, wound clockwise as seen from the
// camera.
func triangleMesh() *models.Mesh {
	m := models.NewMesh("tri")
	n := math3d.V3(0, 0, 1)
	m.Vertices = []models.MeshVertex{
		{Position: math3d.V3(-1, -1, 0), Normal: n},
		{Position: math3d.V3(0, 1, 0), Normal: n},
		{Position: math3d.V3(1, -1, 0), Normal: n},
	}
	m.Faces = []models.Face{{V: [3]int{0, 1, 2}, Material: -1}}
	m.CalculateBounds()
	return m
}

func staticLoader(mesh *models.Mesh, err error) LoadFunc {
	return func(context.Context) (*models.Mesh, image.Image, error) {
		return mesh, nil, err
	}
}

func newTestController(t *testing.T, load LoadFunc) *Controller {
	t.Helper()
	opts := DefaultOptions(40, 40)
	opts.FPS = 200
	opts.Load = load
	return New(opts, zerolog.Nop())
}

func TestControllerInit(t *testing.T) {
	c := newTestController(t, nil)

	assert.Equal(t, Viewport{Width: 40, Height: 40}, c.Viewport())
	assert.Equal(t, math3d.V3(0, 0, 5), c.Camera().Position)
	assert.Nil(t, c.Scene().Model())
	assert.Equal(t, LoadPending, c.Stats().Status)
	assert.False(t, c.Alive())
}

func TestHandleResize(t *testing.T) {
	c := newTestController(t, nil)

	c.HandleResize(123, 77)
	assert.Equal(t, Viewport{Width: 123, Height: 77}, c.Viewport())
	assert.Equal(t, 123, c.Framebuffer().Width)
	assert.Equal(t, 77, c.Framebuffer().Height)
	assert.Equal(t, 123.0/77.0, c.Camera().AspectRatio)

	c.HandleResize(0, 10)
	assert.Equal(t, Viewport{Width: 123, Height: 77}, c.Viewport(), "empty resize ignored")
}

func TestResizeLeavesModelAlone(t *testing.T) {
	c := newTestController(t, staticLoader(triangleMesh(), nil))
	require.NoError(t, c.LoadNow(context.Background()))
	c.HandlePointer(10, 10)
	before := *c.Scene().Model()

	c.HandleResize(300, 100)
	assert.Equal(t, before, *c.Scene().Model())
}

func TestPointerBeforeLoadIsNoop(t *testing.T) {
	c := newTestController(t, nil)
	assert.NotPanics(t, func() { c.HandlePointer(5, 5) })
	assert.Nil(t, c.Scene().Model())
}

func TestPointerAfterLoad(t *testing.T) {
	c := newTestController(t, staticLoader(triangleMesh(), nil))
	require.NoError(t, c.LoadNow(context.Background()))

	c.HandlePointer(20, 20)
	assert.Equal(t, math3d.Euler{}, c.Scene().Model().Rotation, "centre means no rotation")

	c.Handle(PointerMoved{X: 40, Y: 40})
	assert.InDelta(t, 3.14159, c.Scene().Model().Rotation.Yaw, 1e-5)
}

func TestLoadNowFailure(t *testing.T) {
	boom := errors.New("boom")
	c := newTestController(t, staticLoader(nil, boom))

	assert.ErrorIs(t, c.LoadNow(context.Background()), boom)
	assert.Equal(t, LoadFailed, c.Stats().Status)
	assert.Nil(t, c.Scene().Model())
}

func TestRenderFrame(t *testing.T) {
	c := newTestController(t, nil)
	fb := c.RenderFrame()
	assert.Equal(t, Background, fb.GetPixel(20, 20), "empty scene is all background")

	c.opts.Placement = Placement{Scale: 1}
	c.opts.Load = staticLoader(triangleMesh(), nil)
	require.NoError(t, c.LoadNow(context.Background()))

	fb = c.RenderFrame()
	assert.NotEqual(t, Background, fb.GetPixel(20, 22))

	c.Handle(ToggleWireframe{})
	assert.True(t, c.Stats().Wireframe)
	fb = c.RenderFrame()
	assert.Contains(t, fb.Pixels, wireframeColor)
	assert.Equal(t, Background, fb.GetPixel(20, 22), "wireframe leaves the interior clear")
}

func TestRunLoadsAndPresents(t *testing.T) {
	c := newTestController(t, staticLoader(triangleMesh(), nil))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stats := make(chan Stats, 1)
	present := func(*render.Framebuffer) error {
		if s := c.Stats(); s.Status == LoadDone {
			select {
			case stats <- s:
			default:
			}
			cancel()
		}
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, make(chan Event), present) }()

	select {
	case s := <-stats:
		assert.Equal(t, "tri", s.Name)
		assert.Equal(t, 1, s.Polys)
	case <-time.After(5 * time.Second):
		t.Fatal("model never loaded")
	}
	require.NoError(t, <-done)
	assert.False(t, c.Alive())
}

func TestRunAppliesEvents(t *testing.T) {
	c := newTestController(t, nil)
	events := make(chan Event)
	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background(), events, func(*render.Framebuffer) error { return nil }) }()

	events <- Resized{Width: 64, Height: 32}
	close(events)

	require.NoError(t, <-done)
	assert.Equal(t, Viewport{Width: 64, Height: 32}, c.Viewport())
}

func TestRunPresentError(t *testing.T) {
	c := newTestController(t, nil)
	boom := errors.New("flush failed")

	err := c.Run(context.Background(), nil, func(*render.Framebuffer) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestRunTwice(t *testing.T) {
	c := newTestController(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, nil, func(*render.Framebuffer) error { return nil }) }()

	require.Eventually(t, c.Alive, time.Second, time.Millisecond)
	assert.ErrorIs(t, c.Run(ctx, nil, nil), ErrRunning)

	cancel()
	require.NoError(t, <-done)
}

func TestLateLoadIgnored(t *testing.T) {
	release := make(chan struct{})
	returned := make(chan struct{})
	load := func(context.Context) (*models.Mesh, image.Image, error) {
		<-release
		defer close(returned)
		return triangleMesh(), nil, nil
	}
	c := newTestController(t, load)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, nil, func(*render.Framebuffer) error { return nil }) }()
	require.Eventually(t, c.Alive, time.Second, time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	close(release)
	<-returned
	assert.Never(t, func() bool { return len(c.loaded) > 0 }, 50*time.Millisecond, 5*time.Millisecond)
	assert.Nil(t, c.Scene().Model())
	assert.Equal(t, LoadPending, c.Stats().Status)
}

func TestTeardownDiscardsBufferedLoad(t *testing.T) {
	var loads atomic.Int32
	load := func(context.Context) (*models.Mesh, image.Image, error) {
		loads.Add(1)
		return triangleMesh(), nil, nil
	}
	c := newTestController(t, load)

	// A load that lands just before Run stops reading.
	c.alive.Store(true)
	c.load(context.Background())
	require.Len(t, c.loaded, 1)
	c.teardown()
	assert.Empty(t, c.loaded)
	assert.False(t, c.Alive())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	present := func(*render.Framebuffer) error {
		if c.Stats().Status == LoadDone {
			cancel()
		}
		return nil
	}
	require.NoError(t, c.Run(ctx, nil, present))
	assert.Equal(t, LoadDone, c.Stats().Status)
	assert.Equal(t, int32(2), loads.Load())
	assert.Empty(t, c.loaded)
}

func TestFPSClamped(t *testing.T) {
	opts := DefaultOptions(10, 10)
	opts.FPS = 2_000_000_000
	c := New(opts, zerolog.Nop())
	assert.Equal(t, MaxFPS, c.opts.FPS)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.NotPanics(t, func() {
		require.NoError(t, c.Run(ctx, nil, func(*render.Framebuffer) error { return nil }))
	})
}
