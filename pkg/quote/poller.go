package quote

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Fallback is shown whenever a quote cannot be fetched.
const Fallback = "You are stronger than you think, Ellen. Keep shining!"

// PollerConfig configures a Poller.
type PollerConfig struct {
	Interval time.Duration
	Timeout  time.Duration // per call; zero means no extra bound
	Fallback string
}

// Poller keeps the most recent quote. It fetches once on Run and then on
// every interval. Failures are logged and replaced by the fallback; they
// never stop the poller.
type Poller struct {
	gen    Generator
	config PollerConfig
	log    zerolog.Logger

	// OnUpdate, if set, is called from the polling goroutine after every
	// write with the new quote.
	OnUpdate func(string)

	mu    sync.RWMutex
	quote string
}

// NewPoller creates a poller around gen.
func NewPoller(gen Generator, cfg PollerConfig, log zerolog.Logger) *Poller {
	if cfg.Fallback == "" {
		cfg.Fallback = Fallback
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &Poller{
		gen:    gen,
		config: cfg,
		log:    log.With().Str("component", "quote").Logger(),
	}
}

// Quote returns the current quote, empty before the first fetch completes.
func (p *Poller) Quote() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.quote
}

// Run fetches immediately and then on each tick until ctx is done. Ticks are
// counted from the start of Run. Fetches never overlap: a tick that arrives
// during a slow call is dropped.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	p.Refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.Refresh(ctx)
		}
	}
}

// Refresh performs one fetch and stores the result or the fallback.
func (p *Poller) Refresh(ctx context.Context) string {
	if ctx.Err() != nil {
		return p.Quote()
	}
	callCtx := ctx
	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := p.gen.Generate(callCtx)
	if ctx.Err() != nil {
		// Shutting down; leave the last quote in place.
		return p.Quote()
	}

	q := strings.TrimSpace(text)
	if err != nil {
		p.log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("quote fetch failed, using fallback")
		q = p.config.Fallback
	} else {
		p.log.Debug().Dur("elapsed", time.Since(start)).Int("length", len(q)).Msg("quote fetched")
	}

	p.mu.Lock()
	p.quote = q
	p.mu.Unlock()

	if p.OnUpdate != nil {
		p.OnUpdate(q)
	}
	return q
}
