// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Command carbon-devices prints the Vulkan capable devices as JSON
package main

import (
	"encoding/json"
	"flag"
	"os"

	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/carbon/core"
	"github.com/devblok/carbon/device"
)

var validation = flag.Bool("validation", false, "Load Vulkan validation layers")

// deviceReport is one entry of the output
type deviceReport struct {
	device.PhysicalDeviceInfo
	Discrete            bool
	GeometryShader      bool
	SwapchainExtension  bool
	MaxImageDimension2D uint32
}

func main() {
	flag.Parse()

	logger := core.NewLogger(core.LogConfiguration{Level: "warn"}, os.Stderr)

	cfg := core.InstanceConfiguration{
		EnableValidationLayers: *validation,
	}
	instance, err := core.NewVulkanInstance(core.DefaultVulkanApplicationInfo, nil, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to create Vulkan instance")
	}
	defer instance.Destroy()

	swapchainExtensions := core.DefaultConfiguration().Renderer.DeviceExtensions

	var reports []deviceReport
	for _, physical := range instance.AvailableDevices() {
		report := deviceReport{PhysicalDeviceInfo: device.Describe(physical)}
		if c, err := device.Probe(physical, vk.NullSurface, swapchainExtensions); err == nil {
			report.Discrete = c.Discrete
			report.GeometryShader = c.GeometryShader
			report.SwapchainExtension = c.SwapchainExtension
			report.MaxImageDimension2D = c.MaxImageDimension2D
		} else {
			logger.WithError(err).WithField("name", report.Name).Warn("device probe failed")
		}
		reports = append(reports, report)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(reports); err != nil {
		logger.WithError(err).Error("failed to encode devices")
	}
}
