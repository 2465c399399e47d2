package osprite

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/egtoney/osprite/imop"
)

// ConfigFile is the file name looked up inside the config directory.
const ConfigFile = "config.toml"

// Config holds the editor settings read from config.toml.
type Config struct {
	Canvas CanvasConfig `toml:"canvas"`
	Brush  BrushConfig  `toml:"brush"`
	Colors ColorsConfig `toml:"colors"`
	Render RenderConfig `toml:"render"`
	Store  StoreConfig  `toml:"store"`
}

type CanvasConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
	Zoom   int `toml:"zoom"`
}

type BrushConfig struct {
	Tool         string `toml:"tool"`
	Size         int    `toml:"size"`
	Shape        string `toml:"shape"`
	PixelPerfect bool   `toml:"pixel_perfect"`
	Blend        string `toml:"blend"`
}

type ColorsConfig struct {
	Primary   string `toml:"primary"`
	Secondary string `toml:"secondary"`
}

type RenderConfig struct {
	CheckerSize  int    `toml:"checker_size"`
	CheckerLight string `toml:"checker_light"`
	CheckerDark  string `toml:"checker_dark"`
	Background   string `toml:"background"`
}

type StoreConfig struct {
	Dir string `toml:"dir"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() *Config {
	ro := DefaultRenderOptions()
	return &Config{
		Canvas: CanvasConfig{Width: DefaultWidth, Height: DefaultHeight, Zoom: DefaultZoom},
		Brush:  BrushConfig{Tool: ToolPencil.String(), Size: 1, Shape: ShapeSquare.String(), Blend: string(imop.Pencil)},
		Colors: ColorsConfig{Primary: imop.Red.Hex(), Secondary: imop.Clear.Hex()},
		Render: RenderConfig{
			CheckerSize:  ro.CheckerSize,
			CheckerLight: ro.CheckerLight.Hex(),
			CheckerDark:  ro.CheckerDark.Hex(),
			Background:   ro.Background.Hex(),
		},
		Store: StoreConfig{Dir: filepath.Join(ConfigDir(), "sessions")},
	}
}

// LoadConfig reads the config file at path on top of the defaults.
// A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	conf := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		Logger().Info("config file not found, using defaults", "path", path)
		return conf, nil
	}
	if _, err := toml.DecodeFile(path, conf); err != nil {
		return nil, fmt.Errorf("couldn't read config file: %w", err)
	}
	return conf, conf.Validate()
}

// WriteConfig stores conf at path, creating the parent directory.
func WriteConfig(path string, conf *Config) error {
	var buffer bytes.Buffer
	if err := toml.NewEncoder(&buffer).Encode(conf); err != nil {
		return fmt.Errorf("couldn't encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("couldn't create config directory: %w", err)
	}
	return os.WriteFile(path, buffer.Bytes(), 0644)
}

// Validate checks that every value of the config can be used.
func (c *Config) Validate() error {
	if _, err := c.SessionOptions(); err != nil {
		return err
	}
	_, err := c.RenderOptions()
	return err
}

// SessionOptions converts the config into options for new sessions.
func (c *Config) SessionOptions() (Options, error) {
	opts := DefaultOptions()
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return opts, fmt.Errorf("invalid canvas size %dx%d", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Canvas.Zoom < MinZoom || c.Canvas.Zoom > MaxZoom {
		return opts, fmt.Errorf("canvas zoom %d out of range [%d,%d]", c.Canvas.Zoom, MinZoom, MaxZoom)
	}
	opts.Width, opts.Height, opts.Zoom = c.Canvas.Width, c.Canvas.Height, c.Canvas.Zoom

	tool, err := ParseTool(c.Brush.Tool)
	if err != nil {
		return opts, err
	}
	shape, err := ParseShape(c.Brush.Shape)
	if err != nil {
		return opts, err
	}
	blend := imop.Blend{Mode: imop.Pencil}
	if c.Brush.Blend != "" {
		if err := blend.Set(imop.BlendMode(c.Brush.Blend)); err != nil {
			return opts, fmt.Errorf("brush.blend: %w", err)
		}
	}
	opts.Tool = tool
	opts.Pencil = PencilOptions{Shape: shape, Size: c.Brush.Size, PixelPerfect: c.Brush.PixelPerfect, Blend: blend}

	if opts.Primary, err = parseConfigColor("colors.primary", c.Colors.Primary); err != nil {
		return opts, err
	}
	if opts.Secondary, err = parseConfigColor("colors.secondary", c.Colors.Secondary); err != nil {
		return opts, err
	}
	return opts, nil
}

// RenderOptions converts the config into renderer options.
func (c *Config) RenderOptions() (RenderOptions, error) {
	ro := DefaultRenderOptions()
	if c.Render.CheckerSize > 0 {
		ro.CheckerSize = c.Render.CheckerSize
	}
	var err error
	if ro.CheckerLight, err = parseConfigColor("render.checker_light", c.Render.CheckerLight); err != nil {
		return ro, err
	}
	if ro.CheckerDark, err = parseConfigColor("render.checker_dark", c.Render.CheckerDark); err != nil {
		return ro, err
	}
	if ro.Background, err = parseConfigColor("render.background", c.Render.Background); err != nil {
		return ro, err
	}
	return ro, nil
}

func parseConfigColor(key, value string) (imop.RGB, error) {
	c, ok := imop.ParseHex(value)
	if !ok {
		return imop.RGB{}, fmt.Errorf("%s: invalid hex color %q", key, value)
	}
	return c, nil
}

// ConfigDir returns the directory holding the editor configuration.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "osprite")
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "osprite")
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "osprite")
}
