// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

//go:build !js

package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ndev/portfolio/core"
	"github.com/ndev/portfolio/utility/kar"
)

func currentUserName() string {
	u, err := user.Current()
	if err != nil || u.Name == "" {
		return "unknown"
	}
	return u.Name
}

func pack(_ core.Configuration, args []string) error {
	flags := flag.NewFlagSet("pack", flag.ExitOnError)
	author := flags.String("author", currentUserName(), "Set the author of the package")
	version := flags.Int64("version", 1, "Archive version number to create it with")
	dstFile := flags.String("f", "assets.kar", "Destination file")
	force := flags.Bool("force", false, "Overwrite the destination file")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return errors.New("pack takes exactly one directory")
	}
	root := flags.Arg(0)

	if _, err := os.Stat(*dstFile); err == nil && !*force {
		return errors.New("destination file exists, will not overwrite")
	}

	builder, err := kar.NewBuilder(kar.Header{
		Author:      *author,
		DateCreated: time.Now().Unix(),
		Version:     *version,
	})
	if err != nil {
		return err
	}
	defer builder.Close()

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		return builder.Add(filepath.ToSlash(rel), f)
	})
	if err != nil {
		return err
	}

	dst, err := os.Create(*dstFile)
	if err != nil {
		return err
	}
	n, err := builder.WriteTo(dst)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", *dstFile, err)
	}

	log.WithFields(log.Fields{
		"archive": *dstFile,
		"files":   builder.Len(),
		"bytes":   n,
	}).Info("archive written")
	return nil
}

func unpack(_ core.Configuration, args []string) error {
	flags := flag.NewFlagSet("unpack", flag.ExitOnError)
	dstDir := flags.String("d", ".", "Destination directory")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return errors.New("unpack takes exactly one archive")
	}

	f, err := os.Open(flags.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	archive, err := kar.Open(f)
	if err != nil {
		return err
	}

	for _, name := range archive.Names() {
		data, err := archive.ReadAll(name)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		dst := filepath.Join(*dstDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return err
		}
		log.WithField("file", name).Debug("extracted")
	}

	header := archive.Header()
	log.WithFields(log.Fields{
		"author":  header.Author,
		"version": header.Version,
		"files":   len(header.Index),
	}).Info("archive extracted")
	return nil
}
