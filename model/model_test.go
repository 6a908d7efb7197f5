// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package model_test

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	glm "github.com/go-gl/mathgl/mgl32"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/carbon/core"
	"github.com/devblok/carbon/model"
)

func TestQuad(t *testing.T) {
	c := qt.New(t)

	c.Assert(model.QuadVertices, qt.DeepEquals, []model.Vertex{
		{Pos: glm.Vec2{-0.25, -0.5}, Color: glm.Vec3{1, 0, 0}},
		{Pos: glm.Vec2{0.25, -0.5}, Color: glm.Vec3{0, 1, 0}},
		{Pos: glm.Vec2{0.75, 0.5}, Color: glm.Vec3{1, 1, 1}},
		{Pos: glm.Vec2{-0.75, 0.5}, Color: glm.Vec3{0, 0, 1}},
	})
	c.Assert(model.QuadIndices, qt.DeepEquals, []uint16{0, 1, 2, 2, 3, 0})
	for _, idx := range model.QuadIndices {
		c.Assert(int(idx) < len(model.QuadVertices), qt.IsTrue)
	}
}

func TestVertexLayout(t *testing.T) {
	c := qt.New(t)

	bindings := model.VertexBindingDescriptions()
	c.Assert(bindings, qt.HasLen, 1)
	c.Assert(bindings[0].Stride, qt.Equals, uint32(20))
	c.Assert(bindings[0].InputRate, qt.Equals, vk.VertexInputRateVertex)

	attributes := model.VertexAttributeDescriptions()
	c.Assert(attributes, qt.HasLen, 2)
	c.Assert(attributes[0].Location, qt.Equals, uint32(0))
	c.Assert(attributes[0].Format, qt.Equals, vk.FormatR32g32Sfloat)
	c.Assert(attributes[0].Offset, qt.Equals, uint32(0))
	c.Assert(attributes[1].Location, qt.Equals, uint32(1))
	c.Assert(attributes[1].Format, qt.Equals, vk.FormatR32g32b32Sfloat)
	c.Assert(attributes[1].Offset, qt.Equals, uint32(8))
}

func TestVertexBytes(t *testing.T) {
	c := qt.New(t)

	raw := core.Bytes(model.QuadVertices)
	c.Assert(raw, qt.HasLen, 4*20)

	// second vertex, green channel
	green := math.Float32frombits(binary.LittleEndian.Uint32(raw[20+8+4:]))
	c.Assert(green, qt.Equals, float32(1))
	x := math.Float32frombits(binary.LittleEndian.Uint32(raw[40:]))
	c.Assert(x, qt.Equals, float32(0.75))
}

func TestNewUniform(t *testing.T) {
	c := qt.New(t)

	extent := vk.Extent2D{Width: 1920, Height: 1080}
	u := model.NewUniform(0, extent)

	c.Assert(u.Model, qt.DeepEquals, glm.Ident4())
	c.Assert(u.View, qt.DeepEquals, glm.LookAtV(glm.Vec3{2, 2, 2}, glm.Vec3{}, glm.Vec3{0, 0, 1}))

	want := glm.Perspective(glm.DegToRad(45), 1920.0/1080.0, 0.1, 10)
	c.Assert(u.Projection.At(1, 1), qt.Equals, -want.At(1, 1))
	c.Assert(u.Projection.At(0, 0), qt.Equals, want.At(0, 0))
	c.Assert(u.Projection.At(1, 1) < 0, qt.IsTrue)
}

func TestNewUniformRotation(t *testing.T) {
	c := qt.New(t)

	// one second turns the quad by a quarter
	u := model.NewUniform(time.Second, vk.Extent2D{Width: 800, Height: 600})
	x := u.Model.Mul4x1(glm.Vec4{1, 0, 0, 1})
	c.Assert(x.Sub(glm.Vec4{0, 1, 0, 1}).Len() < 1e-6, qt.IsTrue, qt.Commentf("got %v", x))

	// the rotation keeps the Z axis
	z := u.Model.Mul4x1(glm.Vec4{0, 0, 1, 1})
	c.Assert(z.Sub(glm.Vec4{0, 0, 1, 1}).Len() < 1e-6, qt.IsTrue, qt.Commentf("got %v", z))
}

func TestUniformSize(t *testing.T) {
	c := qt.New(t)

	u := model.NewUniform(0, vk.Extent2D{Width: 1, Height: 1})
	c.Assert(core.StructBytes(&u), qt.HasLen, 3*16*4)
}
