package server_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ndev/portfolio/core"
	"github.com/ndev/portfolio/loader"
	"github.com/ndev/portfolio/server"
	"github.com/ndev/portfolio/site"
)

func siteDir(t *testing.T) loader.Dir {
	t.Helper()
	dir := t.TempDir()
	files := []string{
		"static/images/greeting-bg.png",
		"static/images/greeting-bg-distorted-mask.png",
		"static/images/logo.v2.svg",
		"static/shaders/vertex.glsl",
		"static/shaders/fragment.glsl",
	}
	for _, f := range files {
		p := filepath.Join(dir, filepath.FromSlash(f))
		os.MkdirAll(filepath.Dir(p), 0755)
		os.WriteFile(p, []byte(f), 0644)
	}
	return loader.Dir(dir)
}

func TestExpand(t *testing.T) {
	html := `<script src="!{js:index}"></script>
<link href="!{css:index}">
<img src="!{images:greeting-bg}"><img src="!{images:greeting-bg}">
<img src="!{images:logo}">
<meta data-shader="!{shaders:vertex}">`

	got, err := server.Expand(html, siteDir(t))
	if err != nil {
		t.Fatal(err)
	}
	want := `<script src="/static/js/index.js"></script>
<link href="/static/css/index.css">
<img src="/static/images/greeting-bg.png"><img src="/static/images/greeting-bg.png">
<img src="/static/images/logo.v2.svg">
<meta data-shader="shaders/vertex.glsl">`
	if got != want {
		t.Errorf("expanded to\n%s\nwant\n%s", got, want)
	}
}

func TestExpandMatchesWholeBaseName(t *testing.T) {
	got, err := server.Expand("!{images:greeting}", siteDir(t))
	if !errors.Is(err, server.ErrUnresolvedLabel) {
		t.Errorf("expected ErrUnresolvedLabel, got %v", err)
	}
	if got != "!{images:greeting}" {
		t.Errorf("unresolved label should stay, got %q", got)
	}
}

func TestExpandFailures(t *testing.T) {
	_, err := server.Expand("!{nocolon} !{fonts:x}", siteDir(t))
	if !errors.Is(err, server.ErrMalformedLabel) || !errors.Is(err, server.ErrUnresolvedLabel) {
		t.Errorf("expected both label errors, got %v", err)
	}
}

func TestFindLabelsDistinct(t *testing.T) {
	labels := server.FindLabels("!{js:a} !{js:a} !{css:b}")
	if len(labels) != 2 || labels[0].Type != "js" || labels[1].Name != "b" {
		t.Errorf("unexpected labels %+v", labels)
	}
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg, err := core.LoadConfiguration(filepath.Join(t.TempDir(), "none.env"))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Environment = "test"

	srv, err := server.New(cfg, loader.Dir("../assets"), site.DefaultCatalog())
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestIndex(t *testing.T) {
	ts := newServer(t)

	status, body := get(t, ts.URL+"/")
	if status != http.StatusOK {
		t.Fatalf("status %d", status)
	}
	for _, want := range []string{
		"<title>Home</title>",
		`data-page="about"`,
		`data-page="apps"`,
		"/static/js/index.js",
		"/static/images/greeting-bg.png",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("index lacks %q", want)
		}
	}
	if strings.Contains(body, "!{js:") {
		t.Error("script labels should be expanded")
	}
}

func TestIndexPage(t *testing.T) {
	ts := newServer(t)

	status, body := get(t, ts.URL+"/about")
	if status != http.StatusOK || !strings.Contains(body, "<title>About</title>") {
		t.Errorf("about: status %d", status)
	}
	if status, _ := get(t, ts.URL+"/blog"); status != http.StatusNotFound {
		t.Errorf("unknown page: status %d", status)
	}
}

func TestAssets(t *testing.T) {
	ts := newServer(t)

	cases := map[string]int{
		"/static/shaders/vertex.glsl":    http.StatusOK,
		"/shaders/fragment.glsl":         http.StatusOK,
		"/static/images/greeting-bg.png": http.StatusOK,
		"/static/missing.js":             http.StatusNotFound,
		"/static/../pages.yaml":          http.StatusNotFound,
		"/healthz":                       http.StatusOK,
	}
	for path, want := range cases {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != want {
			t.Errorf("%s: status %d, want %d", path, resp.StatusCode, want)
		}
	}

	resp, err := http.Get(ts.URL + "/static/images/greeting-bg.png")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type %q", ct)
	}
}

func TestNewRejectsInvalidCatalog(t *testing.T) {
	cfg := core.Configuration{}
	cfg.Server.Template = "templates/index.html"
	if _, err := server.New(cfg, loader.Dir("../assets"), site.Catalog{}); !errors.Is(err, site.ErrEmptyCatalog) {
		t.Errorf("expected ErrEmptyCatalog, got %v", err)
	}
}

func TestListenAndServeShutsDown(t *testing.T) {
	cfg, err := core.LoadConfiguration(filepath.Join(t.TempDir(), "none.env"))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Server.Address = "127.0.0.1:0"
	srv, err := server.New(cfg, loader.Dir("../assets"), site.DefaultCatalog())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Error(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
