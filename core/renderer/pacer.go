// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/carbon/core"
	"github.com/devblok/carbon/model"
)

// EventWaiter is the part of the window the pacer needs
// to sit out a minimised window
type EventWaiter interface {
	// FramebufferSize returns the drawable size in pixels
	FramebufferSize() (width, height int)

	// WaitEvents blocks until at least one window event arrived
	WaitEvents()
}

// Window is the part of the window that drives the main loop
type Window interface {
	EventWaiter

	// PollEvents processes pending events without blocking
	PollEvents()

	// ShouldClose reports that the user asked to close the window
	ShouldClose() bool
}

// frameTarget is the GPU side of a frame, slot is the frame-in-flight
// index and image the swap-chain image index
type frameTarget interface {
	waitFrame(slot int) error
	acquireImage(slot int) (uint32, vk.Result)
	updateUniform(image uint32, u model.Uniform) error
	submit(slot int, image uint32) error
	present(slot int, image uint32) vk.Result
	rebuild() error
	extent() vk.Extent2D
	imageCount() int
}

// FramePacer runs the acquire, submit, present loop with a fixed number
// of frames in flight and rebuilds the swap-chain when it goes stale.
type FramePacer struct {
	target frameTarget
	window EventWaiter
	log    log.FieldLogger

	frames       int
	currentFrame int

	// imagesInFlight maps a swap-chain image to the slot whose fence
	// guards it, -1 when no frame uses it
	imagesInFlight []int

	framebufferResized bool

	start time.Time
	now   func() time.Time

	presented atomic.Int64
	rebuilds  int
}

func newFramePacer(target frameTarget, window EventWaiter, frames int, logger log.FieldLogger) (*FramePacer, error) {
	if frames < 2 {
		return nil, core.EnvironmentError(errors.Newf("max frames in flight is %d, must be at least 2", frames))
	}
	p := &FramePacer{
		target: target,
		window: window,
		log:    core.Component(logger, "pacer"),
		frames: frames,
		now:    time.Now,
	}
	p.start = p.now()
	p.resetImages()
	return p, nil
}

func (p *FramePacer) resetImages() {
	p.imagesInFlight = make([]int, p.target.imageCount())
	for i := range p.imagesInFlight {
		p.imagesInFlight[i] = -1
	}
}

// FramebufferResized tells the pacer the window changed size. Any number
// of calls before the next present cause a single rebuild.
func (p *FramePacer) FramebufferResized() {
	p.framebufferResized = true
}

// CurrentFrame returns the slot the next frame is drawn with
func (p *FramePacer) CurrentFrame() int {
	return p.currentFrame
}

// Presented returns the number of frames handed to the presentation
// engine. Safe to call from any goroutine.
func (p *FramePacer) Presented() int64 {
	return p.presented.Load()
}

// Rebuilds returns how many times the swap-chain was rebuilt
func (p *FramePacer) Rebuilds() int {
	return p.rebuilds
}

// DrawFrame draws one frame. A stale swap-chain is rebuilt and
// never reported as an error.
func (p *FramePacer) DrawFrame() error {
	slot := p.currentFrame

	if err := p.target.waitFrame(slot); err != nil {
		return err
	}

	image, res := p.target.acquireImage(slot)
	switch res {
	case vk.Success, vk.Suboptimal:
	case vk.ErrorOutOfDate:
		return p.rebuild("acquire out of date")
	default:
		return frameError("vk.AcquireNextImage", res)
	}

	if owner := p.imagesInFlight[image]; owner >= 0 && owner != slot {
		if err := p.target.waitFrame(owner); err != nil {
			return err
		}
	}
	p.imagesInFlight[image] = slot

	u := model.NewUniform(p.now().Sub(p.start), p.target.extent())
	if err := p.target.updateUniform(image, u); err != nil {
		return err
	}

	if err := p.target.submit(slot, image); err != nil {
		return err
	}

	res = p.target.present(slot, image)
	if res == vk.Success || res == vk.Suboptimal {
		p.presented.Add(1)
	}
	switch {
	case res != vk.Success && !core.IsSurfaceObsolete(res):
		return frameError("vk.QueuePresent", res)
	case core.IsSurfaceObsolete(res) || p.framebufferResized:
		reason := fmt.Sprintf("present result %d, resized %t", res, p.framebufferResized)
		if err := p.rebuild(reason); err != nil {
			return err
		}
	}

	p.currentFrame = (p.currentFrame + 1) % p.frames
	return nil
}

// rebuild waits out a zero sized framebuffer, then rebuilds the
// swap-chain and everything derived from it. The new swap-chain has the
// current framebuffer size, so pending resizes are consumed.
func (p *FramePacer) rebuild(reason string) error {
	width, height := p.window.FramebufferSize()
	for width == 0 || height == 0 {
		p.window.WaitEvents()
		width, height = p.window.FramebufferSize()
	}
	p.framebufferResized = false

	if err := p.target.rebuild(); err != nil {
		return errors.Wrap(err, "swap-chain rebuild")
	}
	p.resetImages()
	p.rebuilds++

	p.log.WithFields(log.Fields{
		"reason": reason,
		"width":  width,
		"height": height,
		"images": len(p.imagesInFlight),
	}).Debug("swap-chain rebuilt")
	return nil
}

// Run polls window events and draws frames until the window asks to close.
// When limiter is not nil every frame waits for a tick from it.
func (p *FramePacer) Run(window Window, limiter <-chan time.Time) error {
	for {
		window.PollEvents()
		if window.ShouldClose() {
			p.log.WithField("frames", p.Presented()).Info("window closed")
			return nil
		}
		if limiter != nil {
			<-limiter
		}
		if err := p.DrawFrame(); err != nil {
			return err
		}
	}
}

func frameError(call string, res vk.Result) error {
	if err := core.CheckResult(core.ErrTransientPresent, call, res); err != nil {
		return err
	}
	return errors.Mark(errors.Newf("%s(): unexpected result %d", call, res), core.ErrTransientPresent)
}
