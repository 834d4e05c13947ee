//go:build !js

// Command ndevview shows the portfolio background in a desktop window.
// Arrow keys and the mouse wheel move between pages the way the site
// does, the page title is shown in the window title.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"github.com/gobuffalo/packr"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/ndev/portfolio/core"
	"github.com/ndev/portfolio/device"
	"github.com/ndev/portfolio/device/gldevice"
	"github.com/ndev/portfolio/gfx"
	"github.com/ndev/portfolio/loader"
	"github.com/ndev/portfolio/render"
	"github.com/ndev/portfolio/site"
)

func init() {
	runtime.LockOSThread()
}

var (
	envFile = flag.String("env", "", "Load configuration from this .env file")
	vsync   = flag.Bool("vsync", true, "Synchronise swaps with the display")
)

const title = "ndev"

func main() {
	flag.Parse()

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

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		log.WithError(err).Fatal("sdl init")
	}
	defer sdl.Quit()

	if err := run(cfg); err != nil {
		log.WithError(err).Fatal("viewer stopped")
	}
}

func assets(cfg core.AssetsConfiguration) (loader.Chain, func(), error) {
	var chain loader.Chain
	closeFn := func() {}
	if cfg.Directory != "" {
		chain = append(chain, loader.Dir(cfg.Directory))
	}
	if cfg.Archive != "" {
		archive, err := loader.OpenArchive(cfg.Archive)
		if err != nil {
			return nil, closeFn, err
		}
		chain = append(chain, archive)
		closeFn = func() { archive.Close() }
	}
	return append(chain, loader.NewBox(packr.NewBox("../../assets"))), closeFn, nil
}

func run(cfg core.Configuration) error {
	window := &gldevice.Window{
		Title:  title,
		Width:  int(cfg.Renderer.ScreenWidth),
		Height: int(cfg.Renderer.ScreenHeight),
		VSync:  *vsync,
	}
	defer window.Close()

	queue := core.NewQueue()
	notifier := site.NewNotifier(site.DismissAfter)
	notifier.OnChange(func(note site.Notification, shown bool) {
		if !shown {
			return
		}
		entry := log.WithField("kind", note.Kind)
		if note.Kind == site.Error {
			entry.Error(note.Text)
		} else {
			entry.Info(note.Text)
		}
	})

	ctx, err := gfx.NewContext(window)
	if errors.Is(err, device.ErrContextUnavailable) {
		notifier.Post("OpenGL 3.3 is not available on this system", site.Error)
		return err
	}
	if err != nil {
		return err
	}

	src, closeAssets, err := assets(cfg.Assets)
	if err != nil {
		return err
	}
	defer closeAssets()

	catalog := site.DefaultCatalog()
	if r, err := src.Open(cfg.Server.Catalog); err == nil {
		catalog, err = site.LoadCatalog(r)
		r.Close()
		if err != nil {
			return err
		}
	}

	l := loader.New(ctx, loader.Sub{Source: src, Dir: "static"}, queue, cfg)
	bg := render.Setup(ctx, l, cfg.Renderer, rand.New(rand.NewSource(time.Now().UnixNano())), func(err error) {
		if err != nil {
			notifier.Post("Some images failed to load", site.Error)
		}
	})
	defer bg.Release()

	tm := core.NewTime(cfg.Time)
	renderer := render.New(tm, queue, bg)

	nav := site.NewNavigator(catalog)
	nav.Attach(bg)
	nav.OnChange(func(p site.Page) {
		window.SetTitle(fmt.Sprintf("%s | %s", title, p.Title))
		if p.ID == site.Home {
			renderer.Start()
			return
		}
		renderer.Stop()
		log.WithField("page", p.ID).Info(p.Content)
	})
	window.SetTitle(fmt.Sprintf("%s | %s", title, nav.Current().Title))
	renderer.Start()

	running, cancel := context.WithCancel(context.Background())
	defer cancel()

	tm.Run(running, func() {
		window.Swap()
		queue.Drain()
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			if handle(event, nav) {
				cancel()
				return
			}
		}
	})
	renderer.Stop()
	return nil
}

// handle applies one SDL event, true when the viewer should quit
func handle(event sdl.Event, nav *site.Navigator) bool {
	var err error
	switch et := event.(type) {
	case *sdl.QuitEvent:
		return true
	case *sdl.KeyboardEvent:
		if et.Type != sdl.KEYDOWN {
			return false
		}
		switch et.Keysym.Sym {
		case sdl.K_ESCAPE:
			return true
		case sdl.K_RIGHT, sdl.K_DOWN, sdl.K_PAGEDOWN:
			err = nav.Next()
		case sdl.K_LEFT, sdl.K_UP, sdl.K_PAGEUP:
			err = nav.Prev()
		case sdl.K_HOME:
			err = nav.Navigate(site.Home)
		}
	case *sdl.MouseWheelEvent:
		if et.Y < 0 {
			err = nav.Next()
		} else if et.Y > 0 {
			err = nav.Prev()
		}
	}
	if err != nil {
		log.WithError(err).Warn("navigation")
	}
	return false
}
