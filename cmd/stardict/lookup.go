// Copyright 2026 The go-stardict Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/go-stardict/stardict"
)

// cacheInitiatingPollInterval is how long the lookup command sleeps
// between retries while a dictionary's persistent cache is still
// populating.
const cacheInitiatingPollInterval = 50 * time.Millisecond

func lookupCommand() *cli.Command {
	return &cli.Command{
		Name:      "lookup",
		Usage:     "Look up a word in a dictionary directory.",
		ArgsUsage: "<dir> <word>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "cache",
				Usage: "look up through a persistent cache named `NAME` instead of parsing the dictionary directly",
			},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 2 {
				return fmt.Errorf("%w: expected <dir> <word>", ErrFlagParse)
			}
			dir := c.Args().Get(0)
			word := c.Args().Get(1)

			if cacheName := c.String("cache"); cacheName != "" {
				return lookupCached(c, dir, word, cacheName)
			}
			return lookupPlain(c, dir, word)
		},
	}
}

func lookupPlain(c *cli.Context, dir, word string) error {
	d, err := stardict.Open(dir)
	if err != nil {
		return fmt.Errorf("%w: opening dictionary: %w", ErrStardict, err)
	}
	defer d.Close()

	defs, ok := d.Lookup(word)
	if !ok {
		return fmt.Errorf("%w: %q not found", ErrStardict, word)
	}
	printDefinitions(c, defs)
	return nil
}

func lookupCached(c *cli.Context, dir, word, cacheName string) error {
	d, err := stardict.OpenCached(dir, cacheName)
	if err != nil {
		return fmt.Errorf("%w: opening cached dictionary: %w", ErrStardict, err)
	}
	defer d.Close()

	for {
		defs, ok, err := d.Lookup(word)
		if errors.Is(err, stardict.ErrCacheInitiating) {
			time.Sleep(cacheInitiatingPollInterval)
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: looking up %q: %w", ErrStardict, word, err)
		}
		if !ok {
			return fmt.Errorf("%w: %q not found", ErrStardict, word)
		}
		printDefinitions(c, defs)
		return nil
	}
}

func printDefinitions(c *cli.Context, defs []stardict.WordDefinition) {
	for _, def := range defs {
		_ = must(fmt.Fprintf(c.App.Writer, "%s\n", def.Headword))
		for _, seg := range def.Segments {
			_ = must(fmt.Fprintf(c.App.Writer, "  [%s] %s\n", seg.Types, seg.Text))
		}
	}
}
