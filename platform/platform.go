// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package platform opens the window the renderer presents into.
// SDL2 and GLFW are supported, both must be used from the main thread.
package platform

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/carbon/core"
)

// Window backends
const (
	BackendSDL  = "sdl"
	BackendGLFW = "glfw"
)

// Window is a native window with a Vulkan capable surface
type Window interface {
	// ProcAddr returns vkGetInstanceProcAddr as loaded by the window system
	ProcAddr() unsafe.Pointer

	// RequiredInstanceExtensions lists the instance extensions
	// needed to create a surface
	RequiredInstanceExtensions() []string

	// CreateSurface creates the surface presented into
	CreateSurface(instance vk.Instance) (vk.Surface, error)

	// FramebufferSize returns the drawable size in pixels,
	// zero while the window is minimised
	FramebufferSize() (width, height int)

	// PollEvents processes pending events without blocking
	PollEvents()

	// WaitEvents blocks until at least one event arrived
	WaitEvents()

	// ShouldClose reports that the user asked to close the window
	ShouldClose() bool

	// OnFramebufferResize registers f to be called from event
	// processing whenever the drawable size changes
	OnFramebufferResize(f func(width, height int))

	// Destroy closes the window and shuts the window system down
	Destroy()
}

// Open creates a window with the configured backend
func Open(cfg core.WindowConfiguration) (Window, error) {
	switch cfg.Backend {
	case BackendSDL:
		return newSDLWindow(cfg)
	case BackendGLFW:
		return newGLFWWindow(cfg)
	default:
		return nil, core.EnvironmentError(errors.Newf("unknown window backend %q", cfg.Backend))
	}
}
