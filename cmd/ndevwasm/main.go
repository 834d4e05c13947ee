//go:build js && wasm

// Command ndevwasm is the browser side of the site: it draws the home page
// background on the page canvas and moves between the page sections.
package main

import (
	"errors"
	"math/rand"
	"os"
	"strings"
	"syscall/js"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ndev/portfolio/core"
	"github.com/ndev/portfolio/device"
	"github.com/ndev/portfolio/device/webgl"
	"github.com/ndev/portfolio/gfx"
	"github.com/ndev/portfolio/loader"
	"github.com/ndev/portfolio/render"
	"github.com/ndev/portfolio/site"
)

func main() {
	cfg, err := core.ConfigurationFromEnv()
	if err != nil {
		log.WithError(err).Fatal("configuration")
	}
	if err := core.SetupLogging(cfg.Log); err != nil {
		log.WithError(err).Fatal("logging")
	}

	base := "/static/"
	if len(os.Args) > 1 && os.Args[1] != "" {
		base = os.Args[1]
	}
	if !strings.Contains(base, "://") {
		base = js.Global().Get("location").Get("origin").String() + base
	}

	page := newPage(js.Global().Get("document"))
	notifier := site.NewNotifier(site.DismissAfter)
	notifier.OnChange(page.showNotification)

	nav := site.NewNavigator(page.catalog())
	if err := nav.SetCurrent(page.currentID()); err != nil {
		log.WithError(err).Warn("initial page")
	}
	nav.OnChange(page.show)

	canvas := page.canvas()
	ctx, err := gfx.NewContext(webgl.Canvas{Element: canvas})
	if err != nil {
		if errors.Is(err, device.ErrContextUnavailable) {
			notifier.Post("WebGL is not supported in your browser", site.Error)
		}
		log.WithError(err).Error("background disabled")
		page.bindInput(nav)
		select {}
	}

	queue := core.NewQueue()
	l := loader.New(ctx, loader.HTTP{Base: base}, queue, cfg)
	bg := render.Setup(ctx, l, cfg.Renderer, rand.New(rand.NewSource(time.Now().UnixNano())), func(err error) {
		if err != nil {
			notifier.Post("Some images failed to load", site.Error)
		}
	})

	renderer := render.New(webgl.NewAnimationFrames(), queue, bg)
	nav.Attach(bg)
	nav.OnChange(func(p site.Page) {
		if p.ID == site.Home {
			renderer.Start()
			return
		}
		renderer.Stop()
	})
	if nav.Current().ID == site.Home {
		renderer.Start()
	}

	page.bindInput(nav)
	log.WithField("assets", base).Info("background running")
	select {}
}
