//go:build !js

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/ndev/portfolio/core"
	"github.com/ndev/portfolio/server"
)

func serve(cfg core.Configuration, args []string) error {
	flags := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := flags.String("addr", cfg.Server.Address, "Address to listen on")
	dir := flags.String("assets", cfg.Assets.Directory, "Serve assets from this directory before the built in ones")
	if err := flags.Parse(args); err != nil {
		return err
	}
	cfg.Server.Address = *addr
	cfg.Assets.Directory = *dir

	assets, closeAssets, err := siteAssets(cfg.Assets)
	if err != nil {
		return err
	}
	defer closeAssets()

	catalog, err := siteCatalog(assets, cfg.Server.Catalog)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, assets, catalog)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx)
}
