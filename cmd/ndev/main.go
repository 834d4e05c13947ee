//go:build !js

// Command ndev serves the portfolio site and carries its tooling: a
// headless render check, the asset archive packer and a GPU inventory.
package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/ndev/portfolio/core"
)

type command struct {
	name  string
	usage string
	run   func(cfg core.Configuration, args []string) error
}

var commands = []command{
	{"serve", "serve the site over HTTP", serve},
	{"render", "draw frames of the background on a headless device", renderFrames},
	{"pack", "pack an asset directory into a kar archive", pack},
	{"unpack", "extract a kar archive into a directory", unpack},
	{"gpuinfo", "print the Vulkan devices of this host as JSON", gpuInfo},
}

var envFile = flag.String("env", "", "Load configuration from this .env file instead of .env and .env.<GO_ENV>")

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <command> [command flags]\n\ncommands:\n", os.Args[0])
	for _, c := range commands {
		fmt.Fprintf(flag.CommandLine.Output(), "  %-8s %s\n", c.name, c.usage)
	}
	fmt.Fprintln(flag.CommandLine.Output(), "\nflags:")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}
	cfg, err := core.LoadConfiguration(files...)
	if err != nil {
		log.WithError(err).Fatal("configuration")
	}
	if err := core.SetupLogging(cfg.Log); err != nil {
		log.WithError(err).Fatal("logging")
	}

	name, args := flag.Arg(0), flag.Args()[1:]
	for _, c := range commands {
		if c.name != name {
			continue
		}
		if err := c.run(cfg, args); err != nil {
			log.WithError(err).WithField("command", name).Fatal("command failed")
		}
		return
	}

	log.WithField("command", name).Error("unknown command")
	usage()
	os.Exit(2)
}
