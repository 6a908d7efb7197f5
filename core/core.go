// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package core holds the engine wide services: configuration, logging,
// error kinds, time keeping and the Vulkan instance.
package core

import (
	vk "github.com/vulkan-go/vulkan"
)

// Instance describes a Vulkan instance and supporting methods.
// Once created it is ready to use.
type Instance interface {
	// Handle returns the inner handle of the underlying API
	Handle() vk.Instance

	// AvailableDevices returns handles of Physical Devices
	// from the Vulkan API
	AvailableDevices() []vk.PhysicalDevice

	// Extensions returns enabled instance extensions
	Extensions() []string

	// Layers returns enabled instance layers
	Layers() []string

	// Destroy destroys internal members
	Destroy()
}

// Renderer describes the rendering machinery.
// It's created only with internal values set,
// it needs to be initialised with Initialise() before use.
type Renderer interface {
	// Initialise sets up the configured rendering pipeline
	Initialise() error

	// Destroy waits for the device to go idle and
	// destroys internal members
	Destroy()
}

// ShaderType represents the type of shader thats loaded
type ShaderType int

// Identifies shader objects with their types
const (
	VertexShaderType ShaderType = iota
	FragmentShaderType
)

func (s ShaderType) String() string {
	switch s {
	case VertexShaderType:
		return "vertex"
	case FragmentShaderType:
		return "fragment"
	}
	return "unknown"
}
