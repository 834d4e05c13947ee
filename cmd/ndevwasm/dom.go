//go:build js && wasm

package main

import (
	"strings"
	"syscall/js"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ndev/portfolio/site"
)

const (
	// swipeDistance is the vertical travel in CSS pixels a touch needs to
	// count as a page change
	swipeDistance = 50

	// inputCooldown swallows the burst of wheel events a single scroll
	// gesture produces
	inputCooldown = 800 * time.Millisecond
)

// page is the document the engine drives. Sections and nav buttons carry
// the page id, the catalog is read from them.
type page struct {
	doc   js.Value
	funcs []js.Func

	touchY    float64
	touching  bool
	lastInput time.Time
}

func newPage(doc js.Value) *page {
	return &page{doc: doc}
}

func (p *page) canvas() js.Value {
	canvas := p.doc.Call("getElementById", "background")
	if !canvas.IsNull() {
		window := js.Global()
		ratio := window.Get("devicePixelRatio").Float()
		if ratio <= 0 {
			ratio = 1
		}
		canvas.Set("width", int(window.Get("innerWidth").Float()*ratio))
		canvas.Set("height", int(window.Get("innerHeight").Float()*ratio))
	}
	return canvas
}

func (p *page) catalog() site.Catalog {
	var c site.Catalog
	sections := p.doc.Call("querySelectorAll", "main > section")
	for i := 0; i < sections.Length(); i++ {
		s := sections.Index(i)
		pg := site.Page{ID: s.Get("id").String()}
		if h := s.Call("querySelector", "h1"); !h.IsNull() {
			pg.Title = strings.TrimSpace(h.Get("textContent").String())
		}
		if body := s.Call("querySelector", "p"); !body.IsNull() {
			pg.Content = strings.TrimSpace(body.Get("textContent").String())
		}
		c.Pages = append(c.Pages, pg)
	}
	if err := c.Validate(); err != nil {
		log.WithError(err).Warn("page sections unusable, using the built in catalog")
		return site.DefaultCatalog()
	}
	return c
}

func (p *page) currentID() string {
	id := p.doc.Get("body").Get("dataset").Get("page")
	if id.IsUndefined() || id.String() == "" {
		return site.Home
	}
	return id.String()
}

// show reflects the current page in the document
func (p *page) show(current site.Page) {
	p.doc.Get("body").Get("dataset").Set("page", current.ID)

	sections := p.doc.Call("querySelectorAll", "main > section")
	for i := 0; i < sections.Length(); i++ {
		s := sections.Index(i)
		s.Set("hidden", s.Get("id").String() != current.ID)
	}

	buttons := p.doc.Call("querySelectorAll", "#nav button")
	for i := 0; i < buttons.Length(); i++ {
		b := buttons.Index(i)
		active := b.Get("dataset").Get("page").String() == current.ID
		b.Get("classList").Call("toggle", "active", active)
	}
}

func (p *page) showNotification(note site.Notification, shown bool) {
	el := p.doc.Call("getElementById", "notification")
	if el.IsNull() {
		return
	}
	el.Set("textContent", note.Text)
	el.Set("className", "notification--"+note.Kind.String())
	el.Set("hidden", !shown)
}

func (p *page) listen(target js.Value, event string, fn func(e js.Value)) {
	f := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) > 0 {
			fn(args[0])
		}
		return nil
	})
	target.Call("addEventListener", event, f)
	p.funcs = append(p.funcs, f)
}

// step moves by delta unless a move is still in progress
func (p *page) step(nav *site.Navigator, delta int) {
	if nav.Hiding() || time.Since(p.lastInput) < inputCooldown {
		return
	}
	p.lastInput = time.Now()

	var err error
	if delta > 0 {
		err = nav.Next()
	} else {
		err = nav.Prev()
	}
	if err != nil {
		log.WithError(err).Warn("navigation")
	}
}

func (p *page) bindInput(nav *site.Navigator) {
	buttons := p.doc.Call("querySelectorAll", "#nav button")
	for i := 0; i < buttons.Length(); i++ {
		b := buttons.Index(i)
		id := b.Get("dataset").Get("page").String()
		p.listen(b, "click", func(e js.Value) {
			e.Call("preventDefault")
			if err := nav.Navigate(id); err != nil {
				log.WithError(err).Warn("navigation")
			}
		})
	}

	window := js.Global()
	p.listen(window, "wheel", func(e js.Value) {
		if e.Get("deltaY").Float() > 0 {
			p.step(nav, 1)
		} else {
			p.step(nav, -1)
		}
	})
	p.listen(window, "keydown", func(e js.Value) {
		switch e.Get("key").String() {
		case "ArrowDown", "PageDown":
			p.step(nav, 1)
		case "ArrowUp", "PageUp":
			p.step(nav, -1)
		}
	})
	p.listen(window, "touchstart", func(e js.Value) {
		touches := e.Get("touches")
		if touches.Length() == 0 {
			return
		}
		p.touchY, p.touching = touches.Index(0).Get("clientY").Float(), true
	})
	p.listen(window, "touchend", func(e js.Value) {
		touches := e.Get("changedTouches")
		if !p.touching || touches.Length() == 0 {
			return
		}
		p.touching = false
		diff := p.touchY - touches.Index(0).Get("clientY").Float()
		switch {
		case diff >= swipeDistance:
			p.step(nav, 1)
		case diff <= -swipeDistance:
			p.step(nav, -1)
		}
	})
}
