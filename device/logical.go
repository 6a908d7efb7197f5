// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/carbon/core"
)

// QueueCreateInfos returns one create-info per distinct family,
// each asking for a single queue of priority 1.
func QueueCreateInfos(families QueueFamilyIndices) []vk.DeviceQueueCreateInfo {
	unique := families.Unique()
	infos := make([]vk.DeviceQueueCreateInfo, 0, len(unique))
	for _, family := range unique {
		infos = append(infos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}
	return infos
}

// Logical is an opened device with the queues the renderer uses
type Logical struct {
	Device        vk.Device
	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue
	Record        Record
}

// NewLogical opens the selected device with the given extensions and
// layers enabled, and fetches one queue from each family.
func NewLogical(record Record, extensions, layers []string) (*Logical, error) {
	queueInfos := QueueCreateInfos(record.Families)
	extensions = core.SafeStrings(extensions)
	layers = core.SafeStrings(layers)

	dci := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{{}},
	}

	var device vk.Device
	if err := core.CheckResult(core.ErrResourceCreation, "vk.CreateDevice", vk.CreateDevice(record.Physical, &dci, nil, &device)); err != nil {
		return nil, err
	}

	l := &Logical{
		Device: device,
		Record: record,
	}
	vk.GetDeviceQueue(device, record.Families.Graphics, 0, &l.GraphicsQueue)
	vk.GetDeviceQueue(device, record.Families.Present, 0, &l.PresentQueue)
	return l, nil
}

// WaitIdle blocks until the device has finished all submitted work
func (l *Logical) WaitIdle() error {
	return core.CheckResult(core.ErrResourceCreation, "vk.DeviceWaitIdle", vk.DeviceWaitIdle(l.Device))
}

// Destroy destroys the device, every object created from it
// must be gone already
func (l *Logical) Destroy() {
	vk.DestroyDevice(l.Device, nil)
}
