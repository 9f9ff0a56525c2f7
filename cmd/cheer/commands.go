package main

import (
	"fmt"
	"path/filepath"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/taigrr/cheer/internal/logging"
	"github.com/taigrr/cheer/pkg/models"
	"github.com/taigrr/cheer/pkg/quote"
	"github.com/taigrr/cheer/pkg/scene"
)

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f9c9b6")).Bold(true).Width(12)
	quoteStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#f9c9b6")).
		Padding(0, 2)
)

func newInfoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info <model.glb>",
		Short: "Print mesh statistics for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			log, err := logging.Console(cfg.Log.Level, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			mesh, img, err := models.LoadGLBWithTexture(args[0])
			if err != nil {
				log.Error().Err(err).Str("model", args[0]).Msg("load failed")
				return err
			}

			size := mesh.Size()
			texture := "none"
			if img != nil {
				texture = fmt.Sprintf("%dx%d", img.Bounds().Dx(), img.Bounds().Dy())
			}
			rows := [][2]string{
				{"file", filepath.Base(args[0])},
				{"vertices", fmt.Sprint(mesh.VertexCount())},
				{"triangles", fmt.Sprint(mesh.TriangleCount())},
				{"materials", fmt.Sprint(len(mesh.Materials))},
				{"size", fmt.Sprintf("%.3f x %.3f x %.3f", size.X, size.Y, size.Z)},
				{"texture", texture},
			}
			out := cmd.OutOrStdout()
			for _, r := range rows {
				fmt.Fprintln(out, labelStyle.Render(r[0])+r[1])
			}
			return nil
		},
	}
}

func newSnapshotCmd(opts *rootOptions) *cobra.Command {
	var (
		output        string
		width, height int
		px, py        float64
	)
	cmd := &cobra.Command{
		Use:   "snapshot <model.glb>",
		Short: "Render one frame to a PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			log, err := logging.Console(cfg.Log.Level, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if width <= 0 || height <= 0 {
				return fmt.Errorf("invalid size %dx%d", width, height)
			}
			cfg.Model.Path = args[0]

			ctrl := scene.New(sceneOptions(cfg, width, height), log)
			if err := ctrl.LoadNow(cmd.Context()); err != nil {
				return fmt.Errorf("load model: %w", err)
			}
			if px < 0 {
				px = float64(width) / 2
			}
			if py < 0 {
				py = float64(height) / 2
			}
			ctrl.HandlePointer(px, py)

			if err := ctrl.RenderFrame().SavePNG(output); err != nil {
				return fmt.Errorf("save snapshot: %w", err)
			}
			log.Info().Str("file", output).Int("width", width).Int("height", height).Msg("snapshot written")
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "cheer.png", "output PNG path")
	f.IntVar(&width, "width", 640, "image width in pixels")
	f.IntVar(&height, "height", 480, "image height in pixels")
	f.Float64Var(&px, "pointer-x", -1, "pointer x in pixels (default: centre)")
	f.Float64Var(&py, "pointer-y", -1, "pointer y in pixels (default: centre)")
	return cmd
}

func newQuoteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "quote",
		Short: "Fetch one quote and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			log, err := logging.Console(cfg.Log.Level, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			p := quote.NewPoller(newQuoteClient(cfg), quote.PollerConfig{
				Timeout:  cfg.Quote.Timeout,
				Fallback: cfg.Quote.Fallback,
			}, log)
			fmt.Fprintln(cmd.OutOrStdout(), quoteStyle.Render(p.Refresh(cmd.Context())))
			return nil
		},
	}
}
