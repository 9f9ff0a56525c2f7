// cheer - a terminal greeting card.
// Renders a glTF model that turns to follow the mouse, under a title bar
// and a motivational quote that refreshes every minute.
//
// Controls:
//
//	Mouse  - Turn the model
//	X      - Toggle wireframe (x-ray)
//	?      - Toggle HUD overlay (FPS, model, poly count, load status)
//	Esc    - Quit
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/taigrr/cheer/internal/config"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, newRootCmd(), fang.WithVersion(version)); err != nil {
		stop()
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	noQuote    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "cheer [model.glb]",
		Short: "A sweet 3D greeting in your terminal",
		Long: "cheer renders a glTF model that turns to follow your mouse, with a\n" +
			"motivational quote fetched from a completion endpoint every minute.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Model.Path = args[0]
			}
			return runScene(cmd.Context(), cfg)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default: ./cheer.yaml)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-file", "", "write logs to this file")

	f := cmd.Flags()
	f.Int("fps", 60, "target frames per second")
	f.String("bg", "#f8f0e3", "background color (#rrggbb or r,g,b)")
	f.BoolVar(&opts.noQuote, "no-quote", false, "do not fetch quotes")

	cmd.AddCommand(
		newInfoCmd(opts),
		newSnapshotCmd(opts),
		newQuoteCmd(opts),
	)
	return cmd
}

// loadConfig reads .env, the config file and the flags of cmd.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg, err := config.Load(opts.configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if opts.noQuote {
		cfg.Quote.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
