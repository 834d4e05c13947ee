//go:build !js

package main

import (
	"encoding/json"
	"flag"
	"os"

	"github.com/ndev/portfolio/core"
	"github.com/ndev/portfolio/device/vkinfo"
)

func gpuInfo(_ core.Configuration, args []string) error {
	flags := flag.NewFlagSet("gpuinfo", flag.ExitOnError)
	indent := flags.Bool("indent", false, "Indent the JSON output")
	if err := flags.Parse(args); err != nil {
		return err
	}

	devices, err := vkinfo.Inventory()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	if *indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(devices)
}
