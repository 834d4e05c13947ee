//go:build !js

package main

import (
	"errors"
	"io/fs"

	"github.com/gobuffalo/packr"
	log "github.com/sirupsen/logrus"

	"github.com/ndev/portfolio/core"
	"github.com/ndev/portfolio/loader"
	"github.com/ndev/portfolio/site"
)

// siteAssets chains the configured asset directory and archive in front
// of the assets compiled into the binary. The returned close releases
// the archive mapping.
func siteAssets(cfg core.AssetsConfiguration) (loader.Chain, func(), error) {
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
		closeFn = func() {
			if err := archive.Close(); err != nil {
				log.WithError(err).Warn("archive close")
			}
		}
	}
	chain = append(chain, loader.NewBox(packr.NewBox("../../assets")))

	log.WithFields(log.Fields{
		"directory": cfg.Directory,
		"archive":   cfg.Archive,
	}).Debug("asset sources ready")
	return chain, closeFn, nil
}

// siteCatalog reads the catalog file from the assets, the built in
// catalog is used when there is none
func siteCatalog(assets loader.Source, name string) (site.Catalog, error) {
	r, err := assets.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		log.WithField("catalog", name).Warn("no page catalog, using the built in one")
		return site.DefaultCatalog(), nil
	}
	if err != nil {
		return site.Catalog{}, err
	}
	defer r.Close()
	return site.LoadCatalog(r)
}
