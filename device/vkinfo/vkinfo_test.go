//go:build !js

package vkinfo_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ndev/portfolio/device/vkinfo"
)

func TestInventory(t *testing.T) {
	devices, err := vkinfo.Inventory()
	if errors.Is(err, vkinfo.ErrUnavailable) {
		t.Skip("no vulkan loader on this host")
	}
	if err != nil {
		t.Fatal(err)
	}

	for _, d := range devices {
		if d.Name == "" {
			t.Errorf("device %d has no name", d.ID)
		}
	}
	if _, err := json.Marshal(devices); err != nil {
		t.Error(err)
	}
}

func TestSupports(t *testing.T) {
	d := vkinfo.PhysicalDevice{Extensions: []string{"VK_KHR_maintenance1", "VK_KHR_swapchain"}}
	if !d.Supports("VK_KHR_swapchain") {
		t.Error("swapchain not reported")
	}
	if d.Supports("VK_KHR_ray_query") {
		t.Error("unknown extension reported")
	}
}
