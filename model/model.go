// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package model describes the geometry and per-frame data handed to shaders.
package model

import (
	"time"
	"unsafe"

	glm "github.com/go-gl/mathgl/mgl32"
	vk "github.com/vulkan-go/vulkan"
)

// Vertex is a model vertex, laid out exactly as the vertex shader reads it
type Vertex struct {
	Pos   glm.Vec2
	Color glm.Vec3
}

// Uniform defines a model-view-projection object
type Uniform struct {
	Model      glm.Mat4
	View       glm.Mat4
	Projection glm.Mat4
}

// QuadVertices is the quad drawn every frame
var QuadVertices = []Vertex{
	{Pos: glm.Vec2{-0.25, -0.5}, Color: glm.Vec3{1, 0, 0}},
	{Pos: glm.Vec2{0.25, -0.5}, Color: glm.Vec3{0, 1, 0}},
	{Pos: glm.Vec2{0.75, 0.5}, Color: glm.Vec3{1, 1, 1}},
	{Pos: glm.Vec2{-0.75, 0.5}, Color: glm.Vec3{0, 0, 1}},
}

// QuadIndices are two triangles over QuadVertices
var QuadIndices = []uint16{0, 1, 2, 2, 3, 0}

// Camera constants
var (
	Eye    = glm.Vec3{2, 2, 2}
	Center = glm.Vec3{0, 0, 0}
	Up     = glm.Vec3{0, 0, 1}
)

const (
	// DegreesPerSecond the quad turns around Z
	DegreesPerSecond = 90
	FieldOfView      = 45
	Near             = 0.1
	Far              = 10
)

// NewUniform computes the transforms for a frame drawn elapsed after start,
// onto a target of the given extent. The projection is flipped on Y to
// match Vulkan clip space.
func NewUniform(elapsed time.Duration, extent vk.Extent2D) Uniform {
	angle := float32(elapsed.Seconds()) * glm.DegToRad(DegreesPerSecond)

	aspect := float32(1)
	if extent.Height != 0 {
		aspect = float32(extent.Width) / float32(extent.Height)
	}

	u := Uniform{
		Model:      glm.HomogRotate3DZ(angle),
		View:       glm.LookAtV(Eye, Center, Up),
		Projection: glm.Perspective(glm.DegToRad(FieldOfView), aspect, Near, Far),
	}
	u.Projection[5] *= -1
	return u
}

// VertexBindingDescriptions return Vulkan Vertex descriptors
func VertexBindingDescriptions() []vk.VertexInputBindingDescription {
	return []vk.VertexInputBindingDescription{{
		Binding:   0,
		Stride:    uint32(unsafe.Sizeof(Vertex{})),
		InputRate: vk.VertexInputRateVertex,
	}}
}

// VertexAttributeDescriptions return Vulkan attribute descriptors
func VertexAttributeDescriptions() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: 0,
			Format:   vk.FormatR32g32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.Pos)),
		},
		{
			Binding:  0,
			Location: 1,
			Format:   vk.FormatR32g32b32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.Color)),
		},
	}
}
