// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	"math"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/carbon/core"
	"github.com/devblok/carbon/device"
	"github.com/devblok/carbon/gfx"
)

// chooseSurfaceFormat prefers 8-bit BGRA sRGB in the non-linear sRGB
// colour space and otherwise takes whatever the surface lists first.
func chooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, f := range formats {
		if f.Format == vk.FormatB8g8r8a8Srgb && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f
		}
	}
	return formats[0]
}

// choosePresentMode prefers mailbox, FIFO is always available.
func choosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, m := range modes {
		if m == vk.PresentModeMailbox {
			return m
		}
	}
	return vk.PresentModeFifo
}

// chooseExtent uses the surface's current extent unless the surface lets
// the swap-chain decide, then the framebuffer size is clamped to the limits.
func chooseExtent(caps vk.SurfaceCapabilities, width, height int) vk.Extent2D {
	if caps.CurrentExtent.Width != math.MaxUint32 && caps.CurrentExtent.Height != math.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clamp(uint32(max(width, 0)), caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(uint32(max(height, 0)), caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// chooseImageCount asks for one image more than the minimum,
// a maximum of 0 means there is no upper limit.
func chooseImageCount(caps vk.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

// chooseSharing shares images between both families when they differ.
func chooseSharing(families device.QueueFamilyIndices) (vk.SharingMode, []uint32) {
	if families.Shared() {
		return vk.SharingModeExclusive, nil
	}
	return vk.SharingModeConcurrent, []uint32{families.Graphics, families.Present}
}

func clamp(v, lo, hi uint32) uint32 {
	return max(lo, min(v, hi))
}

// swapchain is the set of presentable images and their views
type swapchain struct {
	handle vk.Swapchain
	format vk.SurfaceFormat
	extent vk.Extent2D
	images []vk.Image
	views  []vk.ImageView
}

type surfaceSupport struct {
	capabilities vk.SurfaceCapabilities
	formats      []vk.SurfaceFormat
	presentModes []vk.PresentMode
}

func querySurfaceSupport(physical vk.PhysicalDevice, surface vk.Surface) (surfaceSupport, error) {
	var support surfaceSupport
	if err := core.CheckResult(core.ErrResourceCreation, "vk.GetPhysicalDeviceSurfaceCapabilities", vk.GetPhysicalDeviceSurfaceCapabilities(physical, surface, &support.capabilities)); err != nil {
		return support, err
	}
	support.capabilities.Deref()
	support.capabilities.CurrentExtent.Deref()
	support.capabilities.MinImageExtent.Deref()
	support.capabilities.MaxImageExtent.Deref()

	var formatCount uint32
	if err := core.CheckResult(core.ErrResourceCreation, "vk.GetPhysicalDeviceSurfaceFormats", vk.GetPhysicalDeviceSurfaceFormats(physical, surface, &formatCount, nil)); err != nil {
		return support, err
	}
	support.formats = make([]vk.SurfaceFormat, formatCount)
	if err := core.CheckResult(core.ErrResourceCreation, "vk.GetPhysicalDeviceSurfaceFormats", vk.GetPhysicalDeviceSurfaceFormats(physical, surface, &formatCount, support.formats)); err != nil {
		return support, err
	}
	for i := range support.formats {
		support.formats[i].Deref()
	}

	var modeCount uint32
	if err := core.CheckResult(core.ErrResourceCreation, "vk.GetPhysicalDeviceSurfacePresentModes", vk.GetPhysicalDeviceSurfacePresentModes(physical, surface, &modeCount, nil)); err != nil {
		return support, err
	}
	support.presentModes = make([]vk.PresentMode, modeCount)
	if err := core.CheckResult(core.ErrResourceCreation, "vk.GetPhysicalDeviceSurfacePresentModes", vk.GetPhysicalDeviceSurfacePresentModes(physical, surface, &modeCount, support.presentModes)); err != nil {
		return support, err
	}

	if len(support.formats) == 0 || len(support.presentModes) == 0 {
		return support, core.ResourceCreationError(errors.New("surface reports no formats or present modes"))
	}
	return support, nil
}

// createSwapchain creates the swap-chain sized for the given framebuffer
// and pushes its destruction onto stack.
func createSwapchain(dev *device.Logical, surface vk.Surface, width, height int, stack *gfx.ReleaseStack) (*swapchain, error) {
	support, err := querySurfaceSupport(dev.Record.Physical, surface)
	if err != nil {
		return nil, err
	}

	sc := &swapchain{
		format: chooseSurfaceFormat(support.formats),
		extent: chooseExtent(support.capabilities, width, height),
	}
	sharing, families := chooseSharing(dev.Record.Families)

	scci := vk.SwapchainCreateInfo{
		SType:                 vk.StructureTypeSwapchainCreateInfo,
		Surface:               surface,
		MinImageCount:         chooseImageCount(support.capabilities),
		ImageFormat:           sc.format.Format,
		ImageColorSpace:       sc.format.ColorSpace,
		ImageExtent:           sc.extent,
		ImageArrayLayers:      1,
		ImageUsage:            vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode:      sharing,
		QueueFamilyIndexCount: uint32(len(families)),
		PQueueFamilyIndices:   families,
		PreTransform:          support.capabilities.CurrentTransform,
		CompositeAlpha:        vk.CompositeAlphaOpaqueBit,
		PresentMode:           choosePresentMode(support.presentModes),
		Clipped:               vk.True,
		OldSwapchain:          vk.NullSwapchain,
	}

	var handle vk.Swapchain
	if err := core.CheckResult(core.ErrResourceCreation, "vk.CreateSwapchain", vk.CreateSwapchain(dev.Device, &scci, nil, &handle)); err != nil {
		return nil, err
	}
	sc.handle = handle
	stack.Defer(func() {
		vk.DestroySwapchain(dev.Device, handle, nil)
	})

	var numImages uint32
	if err := core.CheckResult(core.ErrResourceCreation, "vk.GetSwapchainImages", vk.GetSwapchainImages(dev.Device, handle, &numImages, nil)); err != nil {
		return nil, err
	}
	sc.images = make([]vk.Image, numImages)
	if err := core.CheckResult(core.ErrResourceCreation, "vk.GetSwapchainImages", vk.GetSwapchainImages(dev.Device, handle, &numImages, sc.images)); err != nil {
		return nil, err
	}
	return sc, nil
}

// createImageViews creates one colour view per swap-chain image.
func (sc *swapchain) createImageViews(dev vk.Device, stack *gfx.ReleaseStack) error {
	sc.views = make([]vk.ImageView, 0, len(sc.images))
	for idx, image := range sc.images {
		ivci := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    image,
			ViewType: vk.ImageViewType2d,
			Format:   sc.format.Format,
			Components: vk.ComponentMapping{
				R: vk.ComponentSwizzleIdentity,
				G: vk.ComponentSwizzleIdentity,
				B: vk.ComponentSwizzleIdentity,
				A: vk.ComponentSwizzleIdentity,
			},
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		}

		var view vk.ImageView
		if err := core.CheckResult(core.ErrResourceCreation, "vk.CreateImageView", vk.CreateImageView(dev, &ivci, nil, &view)); err != nil {
			return errors.Wrapf(err, "image %d", idx)
		}
		sc.views = append(sc.views, view)
		stack.Defer(func() {
			vk.DestroyImageView(dev, view, nil)
		})
	}
	return nil
}
