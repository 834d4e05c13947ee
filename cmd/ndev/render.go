//go:build !js

package main

import (
	"errors"
	"flag"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ndev/portfolio/core"
	"github.com/ndev/portfolio/device/headless"
	"github.com/ndev/portfolio/gfx"
	"github.com/ndev/portfolio/loader"
	"github.com/ndev/portfolio/render"
)

// renderFrames runs the background on the recording device, a smoke test
// for shaders and images without a display
func renderFrames(cfg core.Configuration, args []string) error {
	flags := flag.NewFlagSet("render", flag.ExitOnError)
	frames := flags.Uint64("frames", 60, "Number of frames to draw")
	wait := flags.Duration("wait", 5*time.Second, "Give up waiting for textures after this long")
	if err := flags.Parse(args); err != nil {
		return err
	}

	assets, closeAssets, err := siteAssets(cfg.Assets)
	if err != nil {
		return err
	}
	defer closeAssets()

	dev := headless.New(int(cfg.Renderer.ScreenWidth), int(cfg.Renderer.ScreenHeight))
	ctx := gfx.WithDevice(dev)
	queue := core.NewQueue()
	l := loader.New(ctx, loader.Sub{Source: assets, Dir: "static"}, queue, cfg)

	var ready bool
	var loadErr error
	bg := render.Setup(ctx, l, cfg.Renderer, rand.New(rand.NewSource(time.Now().UnixNano())), func(err error) {
		ready, loadErr = true, err
	})
	defer bg.Release()

	tm := core.NewTime(cfg.Time)
	r := render.New(tm, queue, bg)
	r.Start()

	deadline := time.Now().Add(*wait)
	for r.Frames() < *frames || !ready {
		if !ready && time.Now().After(deadline) {
			r.Stop()
			return errors.New("textures did not load in time")
		}
		tm.Frame()
		time.Sleep(tm.Interval())
	}
	r.Stop()

	log.WithFields(log.Fields{
		"frames":  r.Frames(),
		"draws":   len(dev.Draws()),
		"calls":   len(dev.Calls()),
		"objects": dev.Live(),
	}).Info("headless render finished")
	return loadErr
}
