//go:build !js

// Package vkinfo reports the Vulkan capable GPUs of the host. The desktop
// viewer draws with OpenGL, the inventory is a diagnostic printed by
// "ndev gpuinfo" next to the GL extension probe.
package vkinfo

import (
	"errors"
	"fmt"
	"sort"

	vk "github.com/devblok/vulkan"
	log "github.com/sirupsen/logrus"
)

// ErrUnavailable is returned when no Vulkan loader could be found
var ErrUnavailable = errors.New("vulkan unavailable")

// ApplicationInfo describes the inventory to the Vulkan loader
var ApplicationInfo = &vk.ApplicationInfo{
	SType:              vk.StructureTypeApplicationInfo,
	ApiVersion:         vk.MakeVersion(1, 0, 0),
	ApplicationVersion: vk.MakeVersion(1, 0, 0),
	PApplicationName:   "ndev gpuinfo\x00",
	PEngineName:        "ndev\x00",
}

// PhysicalDevice describes one rendering device found on the host
type PhysicalDevice struct {
	ID            int      `json:"id"`
	VendorID      int      `json:"vendorId"`
	DriverVersion int      `json:"driverVersion"`
	Name          string   `json:"name"`
	Invalid       bool     `json:"invalid,omitempty"`
	Extensions    []string `json:"extensions"`
	Layers        []string `json:"layers"`
	Memory        uint64   `json:"memory"`
}

// Supports reports whether the device lists the named extension
func (d PhysicalDevice) Supports(extension string) bool {
	i := sort.SearchStrings(d.Extensions, extension)
	return i < len(d.Extensions) && d.Extensions[i] == extension
}

// Inventory creates a throwaway instance, describes every physical device
// and destroys the instance again.
func Inventory() ([]PhysicalDevice, error) {
	if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := vk.Init(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	instanceInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: ApplicationInfo,
	}

	var instance vk.Instance
	if err := vk.Error(vk.CreateInstance(&instanceInfo, nil, &instance)); err != nil {
		return nil, fmt.Errorf("%w: create instance: %v", ErrUnavailable, err)
	}
	vk.InitInstance(instance)
	defer vk.DestroyInstance(instance, nil)

	devices, err := enumerateDevices(instance)
	if err != nil {
		return nil, err
	}

	infos := make([]PhysicalDevice, len(devices))
	for i, dev := range devices {
		infos[i] = describe(dev)
		log.WithFields(log.Fields{
			"name":       infos[i].Name,
			"extensions": len(infos[i].Extensions),
			"memory":     infos[i].Memory,
		}).Debug("vulkan device found")
	}
	return infos, nil
}

func enumerateDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	var count uint32
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &count, nil)); err != nil {
		return nil, fmt.Errorf("physical device enumeration failed: %s", err)
	}
	devices := make([]vk.PhysicalDevice, count)
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &count, devices)); err != nil {
		return nil, fmt.Errorf("physical device enumeration failed: %s", err)
	}
	return devices, nil
}

func describe(dev vk.PhysicalDevice) PhysicalDevice {
	var info PhysicalDevice

	var numExtensions uint32
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(dev, "", &numExtensions, nil)); err != nil {
		info.Invalid = true
	}
	extensions := make([]vk.ExtensionProperties, numExtensions)
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(dev, "", &numExtensions, extensions)); err != nil {
		info.Invalid = true
	}
	for _, ext := range extensions {
		ext.Deref()
		info.Extensions = append(info.Extensions, vk.ToString(ext.ExtensionName[:]))
	}
	sort.Strings(info.Extensions)

	var numLayers uint32
	if err := vk.Error(vk.EnumerateDeviceLayerProperties(dev, &numLayers, nil)); err != nil {
		info.Invalid = true
	}
	layers := make([]vk.LayerProperties, numLayers)
	if err := vk.Error(vk.EnumerateDeviceLayerProperties(dev, &numLayers, layers)); err != nil {
		info.Invalid = true
	}
	for _, layer := range layers {
		layer.Deref()
		info.Layers = append(info.Layers, vk.ToString(layer.LayerName[:]))
	}

	var memory vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(dev, &memory)
	memory.Deref()
	for i := uint32(0); i < memory.MemoryHeapCount; i++ {
		memory.MemoryHeaps[i].Deref()
		info.Memory += uint64(memory.MemoryHeaps[i].Size)
	}

	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(dev, &props)
	props.Deref()
	info.ID = int(props.DeviceID)
	info.VendorID = int(props.VendorID)
	info.Name = vk.ToString(props.DeviceName[:])
	info.DriverVersion = int(props.DriverVersion)
	return info
}
