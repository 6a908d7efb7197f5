// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"
)

// DefaultVulkanApplicationInfo application info describes a Vulkan application
var DefaultVulkanApplicationInfo = &vk.ApplicationInfo{
	SType:              vk.StructureTypeApplicationInfo,
	ApiVersion:         vk.MakeVersion(1, 0, 0),
	ApplicationVersion: vk.MakeVersion(1, 0, 0),
	EngineVersion:      vk.MakeVersion(1, 0, 0),
	PApplicationName:   "Work In Progress: Game\x00",
	PEngineName:        "Carbon Engine\x00",
}

// Names of the validation layer and the extension used to route its messages
const (
	ValidationLayer      = "VK_LAYER_KHRONOS_validation"
	DebugReportExtension = "VK_EXT_debug_report"
)

// NewVulkanInstance creates a Vulkan instance. procAddr is the window system's
// vkGetInstanceProcAddr, nil selects the default loader.
func NewVulkanInstance(appInfo *vk.ApplicationInfo, procAddr unsafe.Pointer, cfg InstanceConfiguration, logger log.FieldLogger) (*VulkanInstance, error) {
	logger = Component(logger, "instance")

	if procAddr == nil {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return nil, EnvironmentError(errors.Wrap(err, "vk.SetDefaultGetInstanceProcAddr()"))
		}
	} else {
		vk.SetGetInstanceProcAddr(procAddr)
	}

	if err := vk.Init(); err != nil {
		return nil, EnvironmentError(errors.Wrap(err, "vk.Init()"))
	}

	extensions := SafeStrings(cfg.Extensions)
	layers := SafeStrings(cfg.Layers)
	if cfg.EnableValidationLayers {
		available, err := instanceLayers()
		if err != nil {
			return nil, err
		}
		if missing, ok := MissingName(available, []string{ValidationLayer}); ok {
			return nil, EnvironmentError(errors.Newf("validation layer %s requested, but not available", missing))
		}
		layers = append(layers, SafeString(ValidationLayer))
		extensions = append(extensions, SafeString(DebugReportExtension))
	}

	available, err := instanceExtensions()
	if err != nil {
		return nil, err
	}
	if missing, ok := MissingName(available, extensions); ok {
		return nil, EnvironmentError(errors.Newf("required instance extension %s is not available", missing))
	}

	/* Create instance */
	instanceInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}

	var instance vk.Instance
	if err := CheckResult(ErrEnvironment, "vk.CreateInstance", vk.CreateInstance(&instanceInfo, nil, &instance)); err != nil {
		return nil, err
	}
	vk.InitInstance(instance)

	v := &VulkanInstance{
		configuration: cfg,
		instance:      instance,
		extensions:    extensions,
		layers:        layers,
		log:           logger,
	}

	/* Debug sink */
	if cfg.EnableValidationLayers {
		if err := v.createDebugCallback(); err != nil {
			v.Destroy()
			return nil, err
		}
	}

	/* Enumerate devices */
	physicalDevices, err := enumerateDevices(instance)
	if err != nil {
		v.Destroy()
		return nil, err
	}
	v.availableDevices = physicalDevices

	logger.WithFields(log.Fields{
		"extensions": len(extensions),
		"layers":     len(layers),
		"devices":    len(physicalDevices),
	}).Debug("instance created")
	return v, nil
}

// VulkanInstance describes a Vulkan API Instance
type VulkanInstance struct {
	configuration InstanceConfiguration

	availableDevices []vk.PhysicalDevice
	instance         vk.Instance
	debugCallback    vk.DebugReportCallback
	extensions       []string
	layers           []string

	log log.FieldLogger
}

func enumerateDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	var deviceCount uint32
	if err := CheckResult(ErrEnvironment, "vk.EnumeratePhysicalDevices", vk.EnumeratePhysicalDevices(instance, &deviceCount, nil)); err != nil {
		return nil, err
	}
	availableDevices := make([]vk.PhysicalDevice, deviceCount)
	if err := CheckResult(ErrEnvironment, "vk.EnumeratePhysicalDevices", vk.EnumeratePhysicalDevices(instance, &deviceCount, availableDevices)); err != nil {
		return nil, err
	}
	return availableDevices, nil
}

func instanceLayers() ([]string, error) {
	var count uint32
	if err := CheckResult(ErrEnvironment, "vk.EnumerateInstanceLayerProperties", vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, err
	}
	properties := make([]vk.LayerProperties, count)
	if err := CheckResult(ErrEnvironment, "vk.EnumerateInstanceLayerProperties", vk.EnumerateInstanceLayerProperties(&count, properties)); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for _, layer := range properties {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, nil
}

func instanceExtensions() ([]string, error) {
	var count uint32
	if err := CheckResult(ErrEnvironment, "vk.EnumerateInstanceExtensionProperties", vk.EnumerateInstanceExtensionProperties("", &count, nil)); err != nil {
		return nil, err
	}
	properties := make([]vk.ExtensionProperties, count)
	if err := CheckResult(ErrEnvironment, "vk.EnumerateInstanceExtensionProperties", vk.EnumerateInstanceExtensionProperties("", &count, properties)); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for _, ext := range properties {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, nil
}

func (v *VulkanInstance) createDebugCallback() error {
	createInfo := vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(
			vk.DebugReportErrorBit |
				vk.DebugReportWarningBit |
				vk.DebugReportPerformanceWarningBit |
				vk.DebugReportInformationBit),
		PfnCallback: func(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint, messageCode int32, layerPrefix string, message string, userData unsafe.Pointer) vk.Bool32 {
			v.log.WithFields(log.Fields{
				"layer": layerPrefix,
				"code":  messageCode,
			}).Log(DebugReportLevel(flags), message)
			return vk.False
		},
	}

	var callback vk.DebugReportCallback
	if err := CheckResult(ErrEnvironment, "vk.CreateDebugReportCallback", vk.CreateDebugReportCallback(v.instance, &createInfo, nil, &callback)); err != nil {
		return err
	}
	v.debugCallback = callback
	return nil
}

// DebugReportLevel maps validation report flags to the log level
// the message is written at
func DebugReportLevel(flags vk.DebugReportFlags) log.Level {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return log.ErrorLevel
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
		return log.WarnLevel
	case flags&vk.DebugReportFlags(vk.DebugReportInformationBit) != 0:
		return log.InfoLevel
	}
	return log.DebugLevel
}

// Handle implements interface
func (v *VulkanInstance) Handle() vk.Instance {
	return v.instance
}

// Extensions implements interface
func (v *VulkanInstance) Extensions() []string {
	return v.extensions
}

// Layers implements interface
func (v *VulkanInstance) Layers() []string {
	return v.layers
}

// ValidationEnabled tells if the validation layer is active
func (v *VulkanInstance) ValidationEnabled() bool {
	return v.configuration.EnableValidationLayers
}

// AvailableDevices implements interface
func (v *VulkanInstance) AvailableDevices() []vk.PhysicalDevice {
	return v.availableDevices
}

// Destroy implements interface
func (v *VulkanInstance) Destroy() {
	v.availableDevices = nil
	if v.debugCallback != vk.DebugReportCallback(vk.NullHandle) {
		vk.DestroyDebugReportCallback(v.instance, v.debugCallback, nil)
		v.debugCallback = vk.DebugReportCallback(vk.NullHandle)
	}
	vk.DestroyInstance(v.instance, nil)
}
