// Package config loads cheer's settings from defaults, an optional YAML
// file, CHEER_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/taigrr/cheer/pkg/render"
)

// maxFPS matches the frame-rate ceiling of the scene loop.
const maxFPS = 1000

// Config is the full runtime configuration.
type Config struct {
	Model  ModelConfig  `mapstructure:"model"`
	Render RenderConfig `mapstructure:"render"`
	Quote  QuoteConfig  `mapstructure:"quote"`
	UI     UIConfig     `mapstructure:"ui"`
	Log    LogConfig    `mapstructure:"log"`
}

// ModelConfig locates the model and places it in the scene.
type ModelConfig struct {
	Path    string  `mapstructure:"path"`
	Scale   float64 `mapstructure:"scale"`
	OffsetY float64 `mapstructure:"offset_y"`
	Yaw     float64 `mapstructure:"yaw"` // radians
	Fit     bool    `mapstructure:"fit"` // normalize mesh size before placing
}

// RenderConfig holds the camera, frame rate and background.
type RenderConfig struct {
	FPS        int     `mapstructure:"fps"`
	FOV        float64 `mapstructure:"fov"` // degrees
	Near       float64 `mapstructure:"near"`
	Far        float64 `mapstructure:"far"`
	CameraZ    float64 `mapstructure:"camera_z"`
	Background string  `mapstructure:"background"`
}

// QuoteConfig controls the quote endpoint and refresh cadence.
type QuoteConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Endpoint    string        `mapstructure:"endpoint"`
	APIKeyEnv   string        `mapstructure:"api_key_env"` // variable name, not the key
	Prompt      string        `mapstructure:"prompt"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Interval    time.Duration `mapstructure:"interval"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Fallback    string        `mapstructure:"fallback"`
}

// UIConfig holds overlay text.
type UIConfig struct {
	Title string `mapstructure:"title"`
}

// LogConfig sets the log level and destination file.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("model.path", "models/dragon.glb")
	v.SetDefault("model.scale", 0.5)
	v.SetDefault("model.offset_y", -1.5)
	v.SetDefault("model.yaw", math.Pi)
	v.SetDefault("model.fit", false)

	v.SetDefault("render.fps", 60)
	v.SetDefault("render.fov", 75.0)
	v.SetDefault("render.near", 0.1)
	v.SetDefault("render.far", 1000.0)
	v.SetDefault("render.camera_z", 5.0)
	v.SetDefault("render.background", "#f8f0e3")

	v.SetDefault("quote.enabled", true)
	v.SetDefault("quote.endpoint", "https://api.openrouter.ai/v1/completions")
	v.SetDefault("quote.api_key_env", "OPENAI_API_KEY")
	v.SetDefault("quote.prompt", "Generate a motivational quote that is sweet and kind, suitable for Ellen.")
	v.SetDefault("quote.max_tokens", 50)
	v.SetDefault("quote.temperature", 0.7)
	v.SetDefault("quote.interval", time.Minute)
	v.SetDefault("quote.timeout", 30*time.Second)
	v.SetDefault("quote.fallback", "You are stronger than you think, Ellen. Keep shining!")

	v.SetDefault("ui.title", "A Sweet Dragon for Ellen")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"fps":       "render.fps",
	"bg":        "render.background",
	"log-file":  "log.file",
	"log-level": "log.level",
}

// Load reads configuration. When path is empty cheer.yaml is looked up in
// the working directory and the user config dir, and a missing file is not
// an error. Flags in flags that were set on the command line win over
// everything else.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("cheer")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "cheer"))
		}
	}

	v.SetEnvPrefix("CHEER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=value files into the environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Render.FPS <= 0 || c.Render.FPS > maxFPS {
		errs = append(errs, fmt.Errorf("render.fps must be between 1 and %d, got %d", maxFPS, c.Render.FPS))
	}
	if c.Render.FOV <= 0 || c.Render.FOV >= 180 {
		errs = append(errs, fmt.Errorf("render.fov must be between 0 and 180, got %g", c.Render.FOV))
	}
	if c.Render.Near <= 0 || c.Render.Near >= c.Render.Far {
		errs = append(errs, fmt.Errorf("render.near must be positive and below render.far, got %g..%g", c.Render.Near, c.Render.Far))
	}
	if _, err := ParseColor(c.Render.Background); err != nil {
		errs = append(errs, fmt.Errorf("render.background: %w", err))
	}
	if c.Quote.Enabled && c.Quote.Interval <= 0 {
		errs = append(errs, fmt.Errorf("quote.interval must be positive, got %s", c.Quote.Interval))
	}
	return errors.Join(errs...)
}

// Background returns the parsed background color.
func (c *Config) Background() render.Color {
	col, err := ParseColor(c.Render.Background)
	if err != nil {
		return render.Hex(0xf8f0e3)
	}
	return col
}

// ParseColor accepts "#rrggbb", "rrggbb" or "r,g,b".
func ParseColor(s string) (render.Color, error) {
	s = strings.TrimSpace(s)
	if parts := strings.Split(s, ","); len(parts) == 3 {
		var rgb [3]uint8
		for i, p := range parts {
			n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
			if err != nil {
				return render.Color{}, fmt.Errorf("invalid color %q", s)
			}
			rgb[i] = uint8(n)
		}
		return render.RGB(rgb[0], rgb[1], rgb[2]), nil
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return render.Color{}, fmt.Errorf("invalid color %q", s)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return render.Color{}, fmt.Errorf("invalid color %q", s)
	}
	return render.Hex(uint32(n)), nil
}
