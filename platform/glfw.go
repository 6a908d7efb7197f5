// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package platform

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/carbon/core"
)

type glfwWindow struct {
	window   *glfw.Window
	onResize func(width, height int)
}

func newGLFWWindow(cfg core.WindowConfiguration) (*glfwWindow, error) {
	if err := glfw.Init(); err != nil {
		return nil, core.EnvironmentError(errors.Wrap(err, "glfw.Init"))
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return nil, core.EnvironmentError(errors.New("glfw: no Vulkan loader found"))
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	var monitor *glfw.Monitor
	width, height := cfg.Width, cfg.Height
	if cfg.Fullscreen {
		monitor, width, height = fullscreenMode(glfw.GetPrimaryMonitor(), width, height)
	}

	window, err := glfw.CreateWindow(width, height, cfg.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, core.EnvironmentError(errors.Wrap(err, "glfw.CreateWindow"))
	}

	w := &glfwWindow{window: window}
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})
	window.SetKeyCallback(func(win *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			win.SetShouldClose(true)
		}
	})
	return w, nil
}

// fullscreenMode sizes the window to the monitor's video mode. Without a
// monitor the window stays windowed at the requested size.
func fullscreenMode(monitor *glfw.Monitor, width, height int) (*glfw.Monitor, int, int) {
	if monitor == nil {
		return nil, width, height
	}
	if mode := monitor.GetVideoMode(); mode != nil {
		width, height = mode.Width, mode.Height
	}
	return monitor, width, height
}

func (w *glfwWindow) ProcAddr() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

func (w *glfwWindow) RequiredInstanceExtensions() []string {
	return w.window.GetRequiredInstanceExtensions()
}

func (w *glfwWindow) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	srf, err := w.window.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, core.ResourceCreationError(errors.Wrap(err, "glfw.CreateWindowSurface"))
	}
	return vk.SurfaceFromPointer(srf), nil
}

func (w *glfwWindow) FramebufferSize() (int, int) {
	return w.window.GetFramebufferSize()
}

func (w *glfwWindow) PollEvents() {
	glfw.PollEvents()
}

func (w *glfwWindow) WaitEvents() {
	glfw.WaitEvents()
}

func (w *glfwWindow) ShouldClose() bool {
	return w.window.ShouldClose()
}

func (w *glfwWindow) OnFramebufferResize(f func(width, height int)) {
	w.onResize = f
}

func (w *glfwWindow) Destroy() {
	w.window.Destroy()
	glfw.Terminate()
}
