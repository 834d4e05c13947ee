package server

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ndev/portfolio/loader"
)

// package errors
var (
	ErrMalformedLabel  = errors.New("label is not of the form !{type:name}")
	ErrUnresolvedLabel = errors.New("no asset matches label")
)

// StaticDir is the directory of the asset source served under /static/
const StaticDir = "static"

var labelPattern = regexp.MustCompile(`!\{[^}]*\}`)

// Label is an asset reference in a template, written !{type:name}
type Label struct {
	Raw  string
	Type string
	Name string
}

// FindLabels returns every distinct label of html in order of first
// appearance
func FindLabels(html string) []Label {
	var labels []Label
	seen := make(map[string]bool)
	for _, raw := range labelPattern.FindAllString(html, -1) {
		if seen[raw] {
			continue
		}
		seen[raw] = true
		l := Label{Raw: raw}
		if i := strings.IndexByte(raw, ':'); i >= 0 {
			l.Type, l.Name = raw[2:i], raw[i+1:len(raw)-1]
		}
		labels = append(labels, l)
	}
	return labels
}

// Resolve turns a label into a URL. Scripts and stylesheets are named
// directly, any other type is looked up in static/<type> by the part of
// the file name before its first dot. Shaders resolve to a path relative
// to the page, everything else to an absolute /static/ URL.
func Resolve(l Label, assets loader.Lister) (string, error) {
	if l.Type == "" || l.Name == "" {
		return "", fmt.Errorf("%s: %w", l.Raw, ErrMalformedLabel)
	}

	switch l.Type {
	case "js", "css":
		return "/" + StaticDir + "/" + l.Type + "/" + l.Name + "." + l.Type, nil
	}

	names, err := assets.List(StaticDir + "/" + l.Type)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %v", l.Raw, ErrUnresolvedLabel, err)
	}
	for _, file := range names {
		if strings.SplitN(file, ".", 2)[0] != l.Name {
			continue
		}
		if l.Type == "shaders" {
			return l.Type + "/" + file, nil
		}
		return "/" + StaticDir + "/" + l.Type + "/" + file, nil
	}
	return "", fmt.Errorf("%s: %w", l.Raw, ErrUnresolvedLabel)
}

// Expand replaces every label of html it can resolve. Labels that fail
// stay in the text, their errors are joined into the returned error.
func Expand(html string, assets loader.Lister) (string, error) {
	var (
		pairs []string
		errs  []error
	)
	for _, l := range FindLabels(html) {
		url, err := Resolve(l, assets)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		pairs = append(pairs, l.Raw, url)
	}
	return strings.NewReplacer(pairs...).Replace(html), errors.Join(errs...)
}
