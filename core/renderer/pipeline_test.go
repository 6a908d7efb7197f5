// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	"testing"

	qt "github.com/frankban/quicktest"
	vk "github.com/vulkan-go/vulkan"
)

func TestBlendAttachment(t *testing.T) {
	c := qt.New(t)

	blend := blendAttachment()
	c.Assert(blend.BlendEnable, qt.Equals, vk.Bool32(vk.True))
	c.Assert(blend.SrcColorBlendFactor, qt.Equals, vk.BlendFactorSrcAlpha)
	c.Assert(blend.DstColorBlendFactor, qt.Equals, vk.BlendFactorOneMinusSrcAlpha)
	c.Assert(blend.SrcAlphaBlendFactor, qt.Equals, vk.BlendFactorOne)
	c.Assert(blend.DstAlphaBlendFactor, qt.Equals, vk.BlendFactorZero)
	c.Assert(blend.ColorWriteMask, qt.Equals, vk.ColorComponentFlags(0xf))
}

func TestViewportFor(t *testing.T) {
	c := qt.New(t)

	extent := vk.Extent2D{Width: 1280, Height: 720}
	viewport, scissor := viewportFor(extent)

	c.Assert(viewport.Width, qt.Equals, float32(1280))
	c.Assert(viewport.Height, qt.Equals, float32(720))
	c.Assert(viewport.MinDepth, qt.Equals, float32(0))
	c.Assert(viewport.MaxDepth, qt.Equals, float32(1))
	c.Assert(scissor.Offset, qt.Equals, vk.Offset2D{})
	c.Assert(scissor.Extent, qt.Equals, extent)
}

func TestClearColor(t *testing.T) {
	c := qt.New(t)

	c.Assert(clearColor, qt.DeepEquals, []float32{1, 1, 1, 1})
}
