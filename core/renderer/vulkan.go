// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package renderer draws the quad: it owns the swap-chain, the pipeline,
// the recorded command buffers and paces frames onto the surface.
package renderer

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/gobuffalo/packd"
	log "github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/carbon/core"
	"github.com/devblok/carbon/device"
	"github.com/devblok/carbon/gfx"
	"github.com/devblok/carbon/gfx/vkr"
	"github.com/devblok/carbon/model"
)

// NewVulkanRenderer creates a not yet initialised Vulkan API renderer
// drawing onto surface. The window is asked for its framebuffer size
// whenever the swap-chain is sized.
func NewVulkanRenderer(instance core.Instance, surface vk.Surface, window EventWaiter, shaders packd.Finder, cfg core.RendererConfiguration, logger log.FieldLogger) *VulkanRenderer {
	return &VulkanRenderer{
		configuration: cfg,
		instance:      instance,
		surface:       surface,
		window:        window,
		shaderSource:  shaders,
		log:           core.Component(logger, "renderer"),
	}
}

// VulkanRenderer is a Vulkan API renderer
type VulkanRenderer struct {
	configuration core.RendererConfiguration
	log           log.FieldLogger

	instance     core.Instance
	surface      vk.Surface
	window       EventWaiter
	shaderSource packd.Finder

	device    *device.Logical
	allocator *vkr.MemoryAllocator
	shaders   []Shader

	commandPool  vk.CommandPool
	vertexBuffer vkr.Buffer
	indexBuffer  vkr.Buffer
	slots        []frameSlot

	swapchain      *swapchain
	pipeline       pipelineBundle
	images         []swapImage
	commandBuffers []vk.CommandBuffer

	// resources live until Destroy, swapchainResources until the next rebuild
	resources          gfx.ReleaseStack
	swapchainResources gfx.ReleaseStack
}

// Initialise implements interface
func (v *VulkanRenderer) Initialise() error {
	if err := v.initialise(); err != nil {
		v.release()
		return err
	}
	return nil
}

func (v *VulkanRenderer) initialise() error {
	/* Device selection */
	record, err := device.Select(v.instance, v.surface, v.configuration.DeviceExtensions, v.log)
	if err != nil {
		return err
	}

	/* Logical Device setup */
	if v.device, err = device.NewLogical(record, v.configuration.DeviceExtensions, v.instance.Layers()); err != nil {
		return err
	}
	v.resources.Defer(v.device.Destroy)

	/* Shaders */
	code, err := loadShaderPair(v.shaderSource)
	if err != nil {
		return err
	}
	if err := v.createShaders(code); err != nil {
		return err
	}

	v.allocator = vkr.NewMemoryAllocator(v.device.Device, record.Physical)

	/* Command pool */
	if v.commandPool, err = createCommandPool(v.device.Device, record.Families.Graphics, &v.resources); err != nil {
		return err
	}

	/* Vertex and index buffers */
	transfer := vkr.Transfer{
		Device: v.device.Device,
		Pool:   v.commandPool,
		Queue:  v.device.GraphicsQueue,
	}
	if v.vertexBuffer, err = vkr.Upload(transfer, v.allocator, vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit), core.Bytes(model.QuadVertices)); err != nil {
		return errors.Wrap(err, "vertex buffer")
	}
	v.resources.Push(&v.vertexBuffer)
	if v.indexBuffer, err = vkr.Upload(transfer, v.allocator, vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit), core.Bytes(model.QuadIndices)); err != nil {
		return errors.Wrap(err, "index buffer")
	}
	v.resources.Push(&v.indexBuffer)

	/* Swapchain setup */
	if err := v.createSwapchainResources(); err != nil {
		return err
	}
	v.resources.Push(&v.swapchainResources)

	/* Synchronization */
	if v.slots, err = createFrameSlots(v.device.Device, v.configuration.MaxFramesInFlight, &v.resources); err != nil {
		return err
	}

	v.log.WithFields(log.Fields{
		"device": record.Name,
		"images": len(v.images),
		"frames": len(v.slots),
		"width":  v.swapchain.extent.Width,
		"height": v.swapchain.extent.Height,
	}).Info("renderer initialised")
	return nil
}

func (v *VulkanRenderer) createShaders(code shaderCode) error {
	stages := []struct {
		name string
		kind core.ShaderType
		code []byte
	}{
		{VertexShaderFile, core.VertexShaderType, code.vertex},
		{FragmentShaderFile, core.FragmentShaderType, code.fragment},
	}
	for _, stage := range stages {
		shader, err := NewVulkanShader(v.device.Device, stage.name, stage.kind, stage.code)
		if err != nil {
			return err
		}
		v.shaders = append(v.shaders, shader)
		v.resources.Defer(func() {
			shader.Destroy(v.device.Device)
		})
	}
	return nil
}

// createSwapchainResources builds everything that depends on the
// swap-chain, in creation order.
func (v *VulkanRenderer) createSwapchainResources() error {
	dev := v.device.Device
	stack := &v.swapchainResources

	width, height := v.framebufferSize()
	sc, err := createSwapchain(v.device, v.surface, width, height, stack)
	if err != nil {
		return err
	}
	v.swapchain = sc

	if err := sc.createImageViews(dev, stack); err != nil {
		return err
	}

	if v.pipeline, err = createPipelineBundle(dev, v.shaders, sc.format.Format, sc.extent, stack); err != nil {
		return err
	}

	v.images = make([]swapImage, len(sc.images))
	if err := createFramebuffers(dev, v.pipeline.renderPass, sc, v.images, stack); err != nil {
		return err
	}
	if err := createUniformBuffers(dev, v.allocator, v.images, stack); err != nil {
		return err
	}
	if err := createDescriptorSets(dev, v.pipeline.descriptorSetLayout, v.images, stack); err != nil {
		return err
	}

	if v.commandBuffers, err = allocateCommandBuffers(dev, v.commandPool, len(v.images), stack); err != nil {
		return err
	}
	return recordCommandBuffers(v.commandBuffers, drawRecording{
		renderPass:   v.pipeline.renderPass,
		extent:       sc.extent,
		pipeline:     v.pipeline.pipeline,
		layout:       v.pipeline.layout,
		vertexBuffer: v.vertexBuffer.Get(),
		indexBuffer:  v.indexBuffer.Get(),
	}, v.images)
}

func (v *VulkanRenderer) framebufferSize() (int, int) {
	if v.window != nil {
		if width, height := v.window.FramebufferSize(); width > 0 && height > 0 {
			return width, height
		}
	}
	return int(v.configuration.ScreenWidth), int(v.configuration.ScreenHeight)
}

// NewFramePacer returns the pacer that draws with this renderer.
// Initialise must have succeeded.
func (v *VulkanRenderer) NewFramePacer(window EventWaiter) (*FramePacer, error) {
	return newFramePacer(v, window, len(v.slots), v.log)
}

func (v *VulkanRenderer) waitFrame(slot int) error {
	fences := []vk.Fence{v.slots[slot].inFlight}
	return frameCheck("vk.WaitForFences", vk.WaitForFences(v.device.Device, 1, fences, vk.True, math.MaxUint64))
}

func (v *VulkanRenderer) acquireImage(slot int) (uint32, vk.Result) {
	var image uint32
	res := vk.AcquireNextImage(v.device.Device, v.swapchain.handle, math.MaxUint64, v.slots[slot].imageAvailable, vk.NullFence, &image)
	return image, res
}

func (v *VulkanRenderer) updateUniform(image uint32, u model.Uniform) error {
	return v.images[image].uniform.Mem().Write(core.StructBytes(&u))
}

func (v *VulkanRenderer) submit(slot int, image uint32) error {
	s := v.slots[slot]
	fences := []vk.Fence{s.inFlight}
	if err := frameCheck("vk.ResetFences", vk.ResetFences(v.device.Device, 1, fences)); err != nil {
		return err
	}

	submit := []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{s.imageAvailable},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{v.commandBuffers[image]},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{s.renderFinished},
	}}
	return frameCheck("vk.QueueSubmit", vk.QueueSubmit(v.device.GraphicsQueue, 1, submit, s.inFlight))
}

func (v *VulkanRenderer) present(slot int, image uint32) vk.Result {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{v.slots[slot].renderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{v.swapchain.handle},
		PImageIndices:      []uint32{image},
	}
	return vk.QueuePresent(v.device.PresentQueue, &presentInfo)
}

// rebuild drains the device and recreates the swap-chain and
// everything derived from it.
func (v *VulkanRenderer) rebuild() error {
	if err := v.device.WaitIdle(); err != nil {
		return err
	}
	v.swapchainResources.Release()
	v.images = nil
	v.commandBuffers = nil
	return v.createSwapchainResources()
}

func (v *VulkanRenderer) extent() vk.Extent2D {
	return v.swapchain.extent
}

func (v *VulkanRenderer) imageCount() int {
	return len(v.images)
}

func (v *VulkanRenderer) release() {
	v.swapchainResources.Release()
	v.resources.Release()
	v.device = nil
}

// Destroy implements interface
func (v *VulkanRenderer) Destroy() {
	if v.device == nil {
		return
	}
	if err := v.device.WaitIdle(); err != nil {
		v.log.WithError(err).Warn("device did not go idle")
	}
	v.release()
	v.log.Debug("renderer destroyed")
}

func frameCheck(call string, res vk.Result) error {
	return core.CheckResult(core.ErrTransientPresent, call, res)
}
