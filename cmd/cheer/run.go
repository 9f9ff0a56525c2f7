package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/taigrr/cheer/internal/config"
	"github.com/taigrr/cheer/internal/logging"
	"github.com/taigrr/cheer/pkg/math3d"
	"github.com/taigrr/cheer/pkg/overlay"
	"github.com/taigrr/cheer/pkg/quote"
	"github.com/taigrr/cheer/pkg/render"
	"github.com/taigrr/cheer/pkg/scene"
)

// sceneOptions builds controller options for a width x height pixel surface.
func sceneOptions(cfg *config.Config, width, height int) scene.Options {
	opts := scene.DefaultOptions(width, height)
	opts.FPS = cfg.Render.FPS
	opts.FOV = cfg.Render.FOV
	opts.Near = cfg.Render.Near
	opts.Far = cfg.Render.Far
	opts.CameraZ = cfg.Render.CameraZ
	opts.Background = cfg.Background()
	opts.Placement = scene.Placement{
		Position: math3d.V3(0, cfg.Model.OffsetY, 0),
		Scale:    cfg.Model.Scale,
		Yaw:      cfg.Model.Yaw,
	}
	opts.Load = scene.GLBLoader(cfg.Model.Path, cfg.Model.Fit)
	return opts
}

func newQuoteClient(cfg *config.Config) *quote.CompletionClient {
	return quote.NewCompletionClient(quote.ClientConfig{
		Endpoint:    cfg.Quote.Endpoint,
		APIKeyEnv:   cfg.Quote.APIKeyEnv,
		Prompt:      cfg.Quote.Prompt,
		MaxTokens:   cfg.Quote.MaxTokens,
		Temperature: cfg.Quote.Temperature,
		Timeout:     cfg.Quote.Timeout,
	})
}

func newPoller(cfg *config.Config, log zerolog.Logger) *quote.Poller {
	return quote.NewPoller(newQuoteClient(cfg), quote.PollerConfig{
		Interval: cfg.Quote.Interval,
		Timeout:  cfg.Quote.Timeout,
		Fallback: cfg.Quote.Fallback,
	}, log)
}

// termSize is a pending terminal resize in cells.
type termSize struct{ cols, rows int }

func runScene(ctx context.Context, cfg *config.Config) error {
	log, logCloser, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	term := uv.DefaultTerminal()

	cols, rows, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(cols, rows)

	fmt.Fprint(os.Stdout, "\x1b[?1003h") // any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // SGR extended mouse mode

	defer func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	termRenderer := render.NewTerminalRenderer(term, cols, rows)
	fbWidth, fbHeight := termRenderer.FramebufferSize()
	ctrl := scene.New(sceneOptions(cfg, fbWidth, fbHeight), log)
	ov := overlay.New(cfg.UI.Title, cfg.Render.FPS)

	var poller *quote.Poller
	if cfg.Quote.Enabled {
		poller = newPoller(cfg, log)
	}

	log.Info().
		Str("model", cfg.Model.Path).
		Int("cols", cols).
		Int("rows", rows).
		Bool("quotes", poller != nil).
		Msg("starting")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		hudToggles atomic.Int32
		sizeMu     sync.Mutex
		pending    *termSize
	)

	present := func(fb *render.Framebuffer) error {
		sizeMu.Lock()
		if pending != nil {
			cols, rows = pending.cols, pending.rows
			term.Erase()
			term.Resize(cols, rows)
			termRenderer.Resize(cols, rows)
			pending = nil
		}
		sizeMu.Unlock()

		termRenderer.Render(fb)
		if err := termRenderer.Flush(); err != nil {
			return fmt.Errorf("flush: %w", err)
		}

		if poller != nil {
			ov.SetQuote(poller.Quote())
		}
		if hudToggles.Swap(0)%2 == 1 {
			ov.ToggleHUD()
		}
		ov.Tick()

		st := ctrl.Stats()
		return ov.Draw(os.Stdout, fb, cols, rows, overlay.Status{
			Name:      st.Name,
			Polys:     st.Polys,
			Load:      st.Status.String(),
			Wireframe: st.Wireframe,
		})
	}

	events := make(chan scene.Event, 64)
	send := func(ev scene.Event) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev, ok := <-term.Events():
				if !ok {
					cancel()
					return nil
				}
				switch ev := ev.(type) {
				case uv.WindowSizeEvent:
					sizeMu.Lock()
					pending = &termSize{cols: ev.Width, rows: ev.Height}
					sizeMu.Unlock()
					send(scene.Resized{Width: ev.Width, Height: ev.Height * 2})
				case uv.MouseMotionEvent:
					// Cell centre, in half-block pixels.
					send(scene.PointerMoved{X: float64(ev.X) + 0.5, Y: float64(ev.Y*2) + 1})
				case uv.KeyPressEvent:
					switch keyActionFor(ev) {
					case keyQuit:
						cancel()
						return nil
					case keyToggleHUD:
						hudToggles.Add(1)
					case keyToggleWireframe:
						send(scene.ToggleWireframe{})
					}
				}
			}
		}
	})

	if poller != nil {
		g.Go(func() error { return poller.Run(gctx) })
	}

	g.Go(func() error {
		defer cancel()
		return ctrl.Run(gctx, events, present)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("scene stopped")
		return err
	}
	log.Info().Msg("bye")
	return nil
}

type keyAction int

const (
	keyNone keyAction = iota
	keyQuit
	keyToggleHUD
	keyToggleWireframe
)

// keyActionFor maps a key press to what it does. Some terminals report "?"
// as shift+/.
func keyActionFor(ev uv.KeyPressEvent) keyAction {
	switch {
	case ev.MatchString("escape"), ev.MatchString("ctrl+c"):
		return keyQuit
	case ev.MatchString("?"), ev.MatchString("shift+/"):
		return keyToggleHUD
	case ev.MatchString("x"):
		return keyToggleWireframe
	}
	return keyNone
}
