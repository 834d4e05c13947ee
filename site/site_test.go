package site_test

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ndev/portfolio/site"
)

func TestLoadCatalog(t *testing.T) {
	f, err := os.Open("../assets/pages.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	c, err := site.LoadCatalog(f)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, p := range c.Pages {
		ids = append(ids, p.ID)
	}
	if strings.Join(ids, ",") != "home,about,apps" {
		t.Errorf("unexpected pages %v", ids)
	}
	if about, ok := c.Page("about"); !ok || !strings.Contains(about.Content, "Quality") {
		t.Errorf("about page %+v", about)
	}
}

func TestLoadCatalogRejects(t *testing.T) {
	cases := map[string]struct {
		yaml string
		err  error
	}{
		"empty":     {"", site.ErrEmptyCatalog},
		"no pages":  {"pages: []", site.ErrEmptyCatalog},
		"no id":     {"pages:\n  - title: X\n", site.ErrEmptyID},
		"duplicate": {"pages:\n  - id: a\n  - id: a\n", site.ErrDuplicatePage},
	}
	for name, c := range cases {
		if _, err := site.LoadCatalog(strings.NewReader(c.yaml)); !errors.Is(err, c.err) {
			t.Errorf("%s: expected %v, got %v", name, c.err, err)
		}
	}
	if _, err := site.LoadCatalog(strings.NewReader("pages: {")); err == nil {
		t.Error("malformed yaml should fail")
	}
}

func TestDefaultCatalogValid(t *testing.T) {
	if err := site.DefaultCatalog().Validate(); err != nil {
		t.Error(err)
	}
}

// zoom stands in for the background: it completes a hide when told to
type zoom struct {
	pending func()
	hides   int
	reveals int
}

func (z *zoom) Hide(onComplete func()) {
	z.hides++
	z.pending = onComplete
}

func (z *zoom) Reveal() {
	z.reveals++
	z.pending = nil
}

func (z *zoom) complete() {
	if fn := z.pending; fn != nil {
		z.pending = nil
		fn()
	}
}

func TestNavigateFromHomeWaitsForHide(t *testing.T) {
	nav := site.NewNavigator(site.DefaultCatalog())
	z := &zoom{}
	nav.Attach(z)

	var visible []string
	nav.OnChange(func(p site.Page) { visible = append(visible, p.ID) })

	if err := nav.Navigate("about"); err != nil {
		t.Fatal(err)
	}
	if z.hides != 1 || nav.Current().ID != site.Home || len(visible) != 0 {
		t.Fatal("about must not show before the hide completes")
	}
	z.complete()
	if nav.Current().ID != "about" || len(visible) != 1 {
		t.Fatalf("about should show after the hide, current %s", nav.Current().ID)
	}

	if err := nav.Navigate(site.Home); err != nil {
		t.Fatal(err)
	}
	if z.hides != 1 {
		t.Error("returning home must not zoom")
	}
	if nav.Current().ID != site.Home || z.reveals != 1 {
		t.Error("home should show immediately and revealed")
	}
}

func TestNavigateWithoutHider(t *testing.T) {
	nav := site.NewNavigator(site.DefaultCatalog())
	nav.Navigate("apps")
	if nav.Current().ID != "apps" {
		t.Error("without a background the switch is immediate")
	}
}

func TestNavigateBetweenOtherPages(t *testing.T) {
	nav := site.NewNavigator(site.DefaultCatalog())
	z := &zoom{}
	nav.SetCurrent("about")
	nav.Attach(z)

	nav.Navigate("apps")
	if nav.Current().ID != "apps" || z.hides != 0 {
		t.Error("about to apps switches without zoom")
	}
}

func TestNavigateRetargetsDuringHide(t *testing.T) {
	nav := site.NewNavigator(site.DefaultCatalog())
	z := &zoom{}
	nav.Attach(z)

	nav.Navigate("about")
	nav.Navigate("apps")
	if z.hides != 1 {
		t.Errorf("hide started %d times", z.hides)
	}
	z.complete()
	if nav.Current().ID != "apps" {
		t.Errorf("expected apps, got %s", nav.Current().ID)
	}
}

func TestNavigateHomeCancelsHide(t *testing.T) {
	nav := site.NewNavigator(site.DefaultCatalog())
	z := &zoom{}
	nav.Attach(z)

	nav.Navigate("about")
	nav.Navigate(site.Home)
	if nav.Hiding() || z.reveals != 1 {
		t.Error("going back home should cancel the hide")
	}
	z.complete()
	if nav.Current().ID != site.Home {
		t.Errorf("expected home, got %s", nav.Current().ID)
	}
}

func TestNavigateUnknownKeepsCurrent(t *testing.T) {
	nav := site.NewNavigator(site.DefaultCatalog())
	nav.SetCurrent("about")

	if err := nav.Navigate("blog"); !errors.Is(err, site.ErrUnknownPage) {
		t.Errorf("expected ErrUnknownPage, got %v", err)
	}
	if err := nav.SetCurrent("blog"); !errors.Is(err, site.ErrUnknownPage) {
		t.Errorf("expected ErrUnknownPage, got %v", err)
	}
	if nav.Current().ID != "about" {
		t.Errorf("current changed to %s", nav.Current().ID)
	}
}

func TestNavigateSamePageNoop(t *testing.T) {
	nav := site.NewNavigator(site.DefaultCatalog())
	z := &zoom{}
	nav.Attach(z)
	changes := 0
	nav.OnChange(func(site.Page) { changes++ })

	nav.Navigate(site.Home)
	if z.hides != 0 || changes != 0 {
		t.Error("navigating to the current page must do nothing")
	}
}

func TestNextPrev(t *testing.T) {
	nav := site.NewNavigator(site.DefaultCatalog())

	nav.Prev()
	if nav.Current().ID != site.Home {
		t.Error("prev on the first page should stay")
	}
	nav.Next()
	nav.Next()
	nav.Next()
	if nav.Current().ID != "apps" {
		t.Errorf("next should stop on the last page, got %s", nav.Current().ID)
	}
	nav.Prev()
	if nav.Current().ID != "about" {
		t.Errorf("expected about, got %s", nav.Current().ID)
	}
}

func TestNextDuringHideFollowsTarget(t *testing.T) {
	nav := site.NewNavigator(site.DefaultCatalog())
	z := &zoom{}
	nav.Attach(z)

	nav.Next()
	nav.Next()
	z.complete()
	if nav.Current().ID != "apps" {
		t.Errorf("expected apps, got %s", nav.Current().ID)
	}
}

// fakeTimer fires only when the test says so
type fakeTimer struct {
	fn      func()
	stopped bool
}

func (f *fakeTimer) Stop() bool {
	was := !f.stopped
	f.stopped = true
	return was
}

func TestNotifierDismisses(t *testing.T) {
	n := site.NewNotifier(site.DismissAfter)
	var timers []*fakeTimer
	var delays []time.Duration
	n.SetTimer(func(d time.Duration, fn func()) site.Timer {
		timer := &fakeTimer{fn: fn}
		timers = append(timers, timer)
		delays = append(delays, d)
		return timer
	})

	var shown []bool
	n.OnChange(func(_ site.Notification, s bool) { shown = append(shown, s) })

	n.Post("sent", site.Success)
	if note, ok := n.Current(); !ok || note.Text != "sent" {
		t.Fatalf("current = %+v, %v", note, ok)
	}
	if delays[0] != 3*time.Second {
		t.Errorf("dismiss delay %v", delays[0])
	}

	timers[0].fn()
	if _, ok := n.Current(); ok {
		t.Error("notification should be dismissed")
	}
	if len(shown) != 2 || shown[0] != true || shown[1] != false {
		t.Errorf("unexpected change sequence %v", shown)
	}
}

func TestNotifierRestarts(t *testing.T) {
	n := site.NewNotifier(site.DismissAfter)
	var timers []*fakeTimer
	n.SetTimer(func(d time.Duration, fn func()) site.Timer {
		timer := &fakeTimer{fn: fn}
		timers = append(timers, timer)
		return timer
	})

	n.Post("first", site.Success)
	n.Post("second", site.Error)
	if !timers[0].stopped {
		t.Error("re-posting should stop the pending dismissal")
	}

	// a stale timer firing anyway must not dismiss the new notification
	timers[0].fn()
	if note, ok := n.Current(); !ok || note.Text != "second" || note.Kind != site.Error {
		t.Fatalf("current = %+v, %v", note, ok)
	}
	timers[1].fn()
	if _, ok := n.Current(); ok {
		t.Error("restarted timer should dismiss")
	}
}

func TestNotifierRealTimer(t *testing.T) {
	n := site.NewNotifier(10 * time.Millisecond)
	done := make(chan struct{})
	n.OnChange(func(_ site.Notification, shown bool) {
		if !shown {
			close(done)
		}
	})
	n.Post("hello", site.Success)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("notification never dismissed")
	}
}
