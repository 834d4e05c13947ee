package site

import (
	log "github.com/sirupsen/logrus"
)

// Hider hides the home section before the site leaves it and reveals it
// again when the site comes back
type Hider interface {
	// Hide starts hiding, onComplete runs once the section is hidden
	Hide(onComplete func())

	// Reveal shows the section at once and cancels a running Hide
	Reveal()
}

// NewNavigator starts on the first page of the catalog
func NewNavigator(c Catalog) *Navigator {
	n := &Navigator{
		pages: append([]Page(nil), c.Pages...),
		index: make(map[string]int, len(c.Pages)),
	}
	for i, p := range n.pages {
		n.index[p.ID] = i
	}
	return n
}

// Navigator owns the current page. Leaving the home page while a Hider
// is attached waits for the hide to complete, every other move switches
// at once. Like the rest of the frame side it is used from one goroutine.
type Navigator struct {
	pages   []Page
	index   map[string]int
	current int

	hider     Hider
	hiding    bool
	target    int
	listeners []func(Page)
}

// Attach sets the Hider used when leaving home, nil detaches it
func (n *Navigator) Attach(h Hider) {
	n.hider = h
	if h == nil {
		n.hiding = false
	}
}

// OnChange registers fn to run after every page switch
func (n *Navigator) OnChange(fn func(Page)) {
	n.listeners = append(n.listeners, fn)
}

// Pages returns the pages in catalog order
func (n *Navigator) Pages() []Page {
	return append([]Page(nil), n.pages...)
}

// Current returns the page shown now
func (n *Navigator) Current() Page {
	if len(n.pages) == 0 {
		return Page{}
	}
	return n.pages[n.current]
}

// Hiding reports whether a switch waits for the hide to complete
func (n *Navigator) Hiding() bool {
	return n.hiding
}

func (n *Navigator) lookup(id string) (int, error) {
	i, ok := n.index[id]
	if !ok {
		log.WithField("page", id).Warn("navigation to unknown page ignored")
		return 0, ErrUnknownPage
	}
	return i, nil
}

// SetCurrent switches to id at once without any transition
func (n *Navigator) SetCurrent(id string) error {
	i, err := n.lookup(id)
	if err != nil {
		return err
	}
	n.hiding = false
	n.switchTo(i)
	return nil
}

// Navigate moves to id following the transition policy. Moving to the
// current page does nothing, an unknown id leaves the current page as
// it is and returns ErrUnknownPage.
func (n *Navigator) Navigate(id string) error {
	i, err := n.lookup(id)
	if err != nil {
		return err
	}

	if n.hiding {
		if n.pages[i].ID == Home {
			n.hiding = false
			n.hider.Reveal()
			return nil
		}
		n.target = i
		return nil
	}
	if i == n.current {
		return nil
	}

	if n.Current().ID == Home && n.hider != nil {
		n.hiding = true
		n.target = i
		n.hider.Hide(n.hidden)
		return nil
	}

	if n.pages[i].ID == Home && n.hider != nil {
		n.hider.Reveal()
	}
	n.switchTo(i)
	return nil
}

func (n *Navigator) hidden() {
	if !n.hiding {
		return
	}
	n.hiding = false
	n.switchTo(n.target)
}

// Next moves to the following page, on the last page it does nothing
func (n *Navigator) Next() error {
	return n.step(1)
}

// Prev moves to the preceding page, on the first page it does nothing
func (n *Navigator) Prev() error {
	return n.step(-1)
}

func (n *Navigator) step(delta int) error {
	from := n.current
	if n.hiding {
		from = n.target
	}
	to := from + delta
	if to < 0 || to >= len(n.pages) {
		return nil
	}
	return n.Navigate(n.pages[to].ID)
}

func (n *Navigator) switchTo(i int) {
	if i == n.current {
		return
	}
	n.current = i
	page := n.pages[i]
	log.WithField("page", page.ID).Debug("page changed")
	for _, fn := range n.listeners {
		fn(page)
	}
}
