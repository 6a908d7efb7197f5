// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
)

// Configuration defines a global engine configuration setting
type Configuration struct {
	Window   WindowConfiguration
	Instance InstanceConfiguration
	Renderer RendererConfiguration
	Time     TimeConfiguration
	Log      LogConfiguration
}

// WindowConfiguration is used to configure the platform window
type WindowConfiguration struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool

	// Backend selects the windowing library, "sdl" or "glfw"
	Backend string
}

// InstanceConfiguration is used to configure the Vulkan instance
type InstanceConfiguration struct {
	EnableValidationLayers bool

	// Extensions and Layers are appended to whatever the
	// window system and validation require
	Extensions []string
	Layers     []string
}

// RendererConfiguration is used to configure the renderer
type RendererConfiguration struct {
	// MaxFramesInFlight is the number of frames the CPU may
	// record ahead of the GPU, at least 2
	MaxFramesInFlight int
	DeviceExtensions  []string
	ShaderDirectory   string

	// ScreenWidth and ScreenHeight are used as the fallback
	// framebuffer size before the window reports one
	ScreenWidth  uint32
	ScreenHeight uint32
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out
	// To unlimit, set to 0
	FramesPerSecond int

	// ReportInterval in seconds between frame rate reports, 0 disables
	ReportInterval int
}

// LogConfiguration is used to configure logging
type LogConfiguration struct {
	Level string
}

// Environment keys read by LoadEnvironment
const (
	EnvTitle             = "CARBON_TITLE"
	EnvWidth             = "CARBON_WIDTH"
	EnvHeight            = "CARBON_HEIGHT"
	EnvFullscreen        = "CARBON_FULLSCREEN"
	EnvWindow            = "CARBON_WINDOW"
	EnvMaxFramesInFlight = "CARBON_MAX_FRAMES_IN_FLIGHT"
	EnvValidation        = "CARBON_VALIDATION"
	EnvShaders           = "CARBON_SHADERS"
	EnvFramesPerSecond   = "CARBON_FPS"
	EnvLogLevel          = "CARBON_LOG_LEVEL"
)

// DefaultConfiguration returns the configuration the game starts with
// when nothing is overridden
func DefaultConfiguration() Configuration {
	return Configuration{
		Window: WindowConfiguration{
			Title:   "Work In Progress: Game",
			Width:   1920,
			Height:  1080,
			Backend: "sdl",
		},
		Renderer: RendererConfiguration{
			MaxFramesInFlight: 2,
			DeviceExtensions:  []string{"VK_KHR_swapchain"},
			ShaderDirectory:   "shaders",
			ScreenWidth:       1920,
			ScreenHeight:      1080,
		},
		Time: TimeConfiguration{
			ReportInterval: 5,
		},
		Log: LogConfiguration{
			Level: "info",
		},
	}
}

// LoadEnvironment loads the given .env files, if any, and applies every
// CARBON_* variable found in the environment on top of cfg.
func LoadEnvironment(cfg Configuration, files ...string) (Configuration, error) {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return cfg, EnvironmentError(errors.Wrap(err, "godotenv.Load()"))
		}
	}
	envy.Reload()

	cfg.Window.Title = envy.Get(EnvTitle, cfg.Window.Title)
	cfg.Window.Backend = strings.ToLower(envy.Get(EnvWindow, cfg.Window.Backend))
	cfg.Renderer.ShaderDirectory = envy.Get(EnvShaders, cfg.Renderer.ShaderDirectory)
	cfg.Log.Level = envy.Get(EnvLogLevel, cfg.Log.Level)

	var err error
	if cfg.Window.Width, err = envInt(EnvWidth, cfg.Window.Width); err != nil {
		return cfg, err
	}
	if cfg.Window.Height, err = envInt(EnvHeight, cfg.Window.Height); err != nil {
		return cfg, err
	}
	if cfg.Renderer.MaxFramesInFlight, err = envInt(EnvMaxFramesInFlight, cfg.Renderer.MaxFramesInFlight); err != nil {
		return cfg, err
	}
	if cfg.Time.FramesPerSecond, err = envInt(EnvFramesPerSecond, cfg.Time.FramesPerSecond); err != nil {
		return cfg, err
	}
	if cfg.Window.Fullscreen, err = envBool(EnvFullscreen, cfg.Window.Fullscreen); err != nil {
		return cfg, err
	}
	if cfg.Instance.EnableValidationLayers, err = envBool(EnvValidation, cfg.Instance.EnableValidationLayers); err != nil {
		return cfg, err
	}

	cfg.Renderer.ScreenWidth = uint32(cfg.Window.Width)
	cfg.Renderer.ScreenHeight = uint32(cfg.Window.Height)
	return cfg, nil
}

// Validate reports the first setting that the renderer cannot work with
func (c Configuration) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return EnvironmentError(errors.Newf("window size %dx%d is not positive", c.Window.Width, c.Window.Height))
	case c.Renderer.MaxFramesInFlight < 2:
		return EnvironmentError(errors.Newf("max frames in flight is %d, must be at least 2", c.Renderer.MaxFramesInFlight))
	case c.Window.Backend != "sdl" && c.Window.Backend != "glfw":
		return EnvironmentError(errors.Newf("unknown window backend %q", c.Window.Backend))
	case c.Time.FramesPerSecond < 0:
		return EnvironmentError(errors.Newf("frames per second is %d", c.Time.FramesPerSecond))
	}
	return nil
}

func envInt(key string, fallback int) (int, error) {
	raw := envy.Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, EnvironmentError(errors.Wrapf(err, "%s", key))
	}
	return v, nil
}

func envBool(key string, fallback bool) (bool, error) {
	raw := envy.Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback, EnvironmentError(errors.Wrapf(err, "%s", key))
	}
	return v, nil
}
