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
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/go-stardict/stardict"
)

func resourceCommand() *cli.Command {
	return &cli.Command{
		Name:      "resource",
		Usage:     "Fetch a res/ side file from a dictionary directory and write it to stdout.",
		ArgsUsage: "<dir> <href>",
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 2 {
				return fmt.Errorf("%w: expected <dir> <href>", ErrFlagParse)
			}
			dir := c.Args().Get(0)
			href := c.Args().Get(1)

			d, err := stardict.Open(dir)
			if err != nil {
				return fmt.Errorf("%w: opening dictionary: %w", ErrStardict, err)
			}
			defer d.Close()

			data, err := d.GetResource(href)
			if err != nil {
				return fmt.Errorf("%w: fetching resource %q: %w", ErrStardict, href, err)
			}

			if _, err := c.App.Writer.Write(data); err != nil {
				return fmt.Errorf("%w: writing resource: %w", ErrStardict, err)
			}
			return nil
		},
	}
}
