// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	log "github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/carbon/core"
)

// Describe gathers the device information reported by tooling
func Describe(physical vk.PhysicalDevice) PhysicalDeviceInfo {
	var pdi PhysicalDeviceInfo

	// Get extension info
	extensions, err := deviceExtensions(physical)
	if err != nil {
		pdi.Invalid = true
	}
	pdi.Extensions = extensions

	// Get layers info
	var numDeviceLayers uint32
	if err := vk.Error(vk.EnumerateDeviceLayerProperties(physical, &numDeviceLayers, nil)); err != nil {
		pdi.Invalid = true
	}
	deviceLayers := make([]vk.LayerProperties, numDeviceLayers)
	if err := vk.Error(vk.EnumerateDeviceLayerProperties(physical, &numDeviceLayers, deviceLayers)); err != nil {
		pdi.Invalid = true
	}
	for _, layer := range deviceLayers {
		layer.Deref()
		pdi.Layers = append(pdi.Layers, vk.ToString(layer.LayerName[:]))
	}

	// Get memory info
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(physical, &memoryProperties)
	memoryProperties.Deref()
	for iMem := uint32(0); iMem < memoryProperties.MemoryHeapCount; iMem++ {
		memoryProperties.MemoryHeaps[iMem].Deref()
		pdi.Memory += memoryProperties.MemoryHeaps[iMem].Size
	}

	// Get general device info
	properties := deviceProperties(physical)
	pdi.ID = int(properties.DeviceID)
	pdi.VendorID = int(properties.VendorID)
	pdi.Name = vk.ToString(properties.DeviceName[:])
	pdi.Type = TypeName(properties.DeviceType)
	pdi.DriverVersion = int(properties.DriverVersion)
	return pdi
}

func deviceProperties(physical vk.PhysicalDevice) vk.PhysicalDeviceProperties {
	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(physical, &properties)
	properties.Deref()
	properties.Limits.Deref()
	return properties
}

func deviceExtensions(physical vk.PhysicalDevice) ([]string, error) {
	var count uint32
	if err := core.CheckResult(core.ErrEnvironment, "vk.EnumerateDeviceExtensionProperties", vk.EnumerateDeviceExtensionProperties(physical, "", &count, nil)); err != nil {
		return nil, err
	}
	properties := make([]vk.ExtensionProperties, count)
	if err := core.CheckResult(core.ErrEnvironment, "vk.EnumerateDeviceExtensionProperties", vk.EnumerateDeviceExtensionProperties(physical, "", &count, properties)); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for _, ext := range properties {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, nil
}

func queueFamilies(physical vk.PhysicalDevice, surface vk.Surface) []QueueFamily {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(physical, &count, nil)
	properties := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(physical, &count, properties)

	families := make([]QueueFamily, count)
	for i := range properties {
		properties[i].Deref()
		families[i].Graphics = properties[i].QueueCount > 0 &&
			properties[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0

		if surface != vk.NullSurface {
			var supported vk.Bool32
			vk.GetPhysicalDeviceSurfaceSupport(physical, uint32(i), surface, &supported)
			families[i].Present = supported.B()
		}
	}
	return families
}

// Probe queries everything the selector scores a device on. The surface
// may be null, the device then never has a present family.
func Probe(physical vk.PhysicalDevice, surface vk.Surface, extensions []string) (Candidate, error) {
	properties := deviceProperties(physical)

	var features vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(physical, &features)
	features.Deref()

	available, err := deviceExtensions(physical)
	if err != nil {
		return Candidate{}, err
	}
	_, missing := core.MissingName(available, extensions)

	c := Candidate{
		Physical:            physical,
		Name:                vk.ToString(properties.DeviceName[:]),
		Discrete:            properties.DeviceType == vk.PhysicalDeviceTypeDiscreteGpu,
		MaxImageDimension2D: properties.Limits.MaxImageDimension2D,
		GeometryShader:      features.GeometryShader.B(),
		SwapchainExtension:  !missing,
		Families:            FindQueueFamilies(queueFamilies(physical, surface)),
	}

	// surface support is only asked for when the swap-chain can exist
	if surface == vk.NullSurface || !c.SwapchainExtension {
		return c, nil
	}

	if err := core.CheckResult(core.ErrEnvironment, "vk.GetPhysicalDeviceSurfaceCapabilities", vk.GetPhysicalDeviceSurfaceCapabilities(physical, surface, &c.Capabilities)); err != nil {
		return Candidate{}, err
	}
	c.Capabilities.Deref()

	var formatCount uint32
	if err := core.CheckResult(core.ErrEnvironment, "vk.GetPhysicalDeviceSurfaceFormats", vk.GetPhysicalDeviceSurfaceFormats(physical, surface, &formatCount, nil)); err != nil {
		return Candidate{}, err
	}
	var presentModeCount uint32
	if err := core.CheckResult(core.ErrEnvironment, "vk.GetPhysicalDeviceSurfacePresentModes", vk.GetPhysicalDeviceSurfacePresentModes(physical, surface, &presentModeCount, nil)); err != nil {
		return Candidate{}, err
	}
	c.FormatCount = int(formatCount)
	c.PresentModeCount = int(presentModeCount)
	return c, nil
}

// Select probes every device of the instance against the surface and
// returns the best scoring one.
func Select(instance core.Instance, surface vk.Surface, extensions []string, logger log.FieldLogger) (Record, error) {
	logger = core.Component(logger, "device")

	devices := instance.AvailableDevices()
	if len(devices) == 0 {
		return Record{}, ErrNoSuitableGPU
	}

	candidates := make([]Candidate, 0, len(devices))
	for _, physical := range devices {
		c, err := Probe(physical, surface, extensions)
		if err != nil {
			return Record{}, err
		}
		logger.WithFields(log.Fields{
			"name":     c.Name,
			"discrete": c.Discrete,
			"suitable": c.Suitable(),
			"score":    c.Score(),
		}).Debug("device probed")
		candidates = append(candidates, c)
	}

	record, err := Choose(candidates)
	if err != nil {
		return Record{}, err
	}
	logger.WithFields(log.Fields{
		"name":     record.Name,
		"graphics": record.Families.Graphics,
		"present":  record.Families.Present,
	}).Info("device selected")
	return record, nil
}
