// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package platform

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/devblok/carbon/core"
)

type sdlWindow struct {
	window   *sdl.Window
	closing  bool
	onResize func(width, height int)
}

func newSDLWindow(cfg core.WindowConfiguration) (*sdlWindow, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, core.EnvironmentError(errors.Wrap(err, "sdl.Init"))
	}

	if err := sdl.VulkanLoadLibrary(""); err != nil {
		sdl.Quit()
		return nil, core.EnvironmentError(errors.Wrap(err, "sdl.VulkanLoadLibrary"))
	}

	flags := uint32(sdl.WINDOW_VULKAN | sdl.WINDOW_RESIZABLE)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}

	window, err := sdl.CreateWindow(cfg.Title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.Width),
		int32(cfg.Height),
		flags)
	if err != nil {
		sdl.VulkanUnloadLibrary()
		sdl.Quit()
		return nil, core.EnvironmentError(errors.Wrap(err, "sdl.CreateWindow"))
	}
	return &sdlWindow{window: window}, nil
}

func (w *sdlWindow) ProcAddr() unsafe.Pointer {
	return sdl.VulkanGetVkGetInstanceProcAddr()
}

func (w *sdlWindow) RequiredInstanceExtensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

func (w *sdlWindow) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	srf, err := w.window.VulkanCreateSurface(instance)
	if err != nil {
		return vk.NullSurface, core.ResourceCreationError(errors.Wrap(err, "sdl.VulkanCreateSurface"))
	}
	return vk.SurfaceFromPointer(uintptr(srf)), nil
}

func (w *sdlWindow) FramebufferSize() (int, int) {
	if w.window.GetFlags()&sdl.WINDOW_MINIMIZED != 0 {
		return 0, 0
	}
	width, height := w.window.VulkanGetDrawableSize()
	return int(width), int(height)
}

func (w *sdlWindow) PollEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		w.handle(event)
	}
}

func (w *sdlWindow) WaitEvents() {
	if event := sdl.WaitEvent(); event != nil {
		w.handle(event)
	}
	w.PollEvents()
}

func (w *sdlWindow) handle(event sdl.Event) {
	switch et := event.(type) {
	case *sdl.KeyboardEvent:
		if et.Keysym.Sym == sdl.K_ESCAPE {
			w.closing = true
		}
	case *sdl.QuitEvent:
		w.closing = true
	case *sdl.WindowEvent:
		if et.Event == sdl.WINDOWEVENT_SIZE_CHANGED && w.onResize != nil {
			w.onResize(int(et.Data1), int(et.Data2))
		}
	}
}

func (w *sdlWindow) ShouldClose() bool {
	return w.closing
}

func (w *sdlWindow) OnFramebufferResize(f func(width, height int)) {
	w.onResize = f
}

func (w *sdlWindow) Destroy() {
	_ = w.window.Destroy()
	sdl.VulkanUnloadLibrary()
	sdl.Quit()
}
