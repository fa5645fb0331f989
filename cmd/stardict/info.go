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

	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"

	"github.com/go-stardict/stardict"
	"github.com/go-stardict/stardict/ifo"
)

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Print a dictionary directory's .ifo metadata.",
		ArgsUsage: "<dir>",
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 1 {
				return fmt.Errorf("%w: expected <dir>", ErrFlagParse)
			}
			dir := c.Args().Get(0)

			d, err := stardict.Open(dir)
			if err != nil {
				return fmt.Errorf("%w: opening dictionary: %w", ErrStardict, err)
			}
			defer d.Close()

			printInfo(c, d.Ifo)
			return nil
		},
	}
}

func printInfo(c *cli.Context, inf *ifo.Ifo) {
	tbl := table.New("field", "value")
	tbl.WithWriter(c.App.Writer)
	tbl.AddRow("bookname", inf.BookName)
	tbl.AddRow("wordcount", inf.WordCount)
	tbl.AddRow("synwordcount", inf.SynWordCount)
	tbl.AddRow("idxfilesize", inf.IdxFileSize)
	tbl.AddRow("idxoffsetbits", inf.IdxOffsetBits)
	tbl.AddRow("author", inf.Author)
	tbl.AddRow("email", inf.Email)
	tbl.AddRow("website", inf.Website)
	tbl.AddRow("description", inf.Description)
	tbl.AddRow("date", inf.Date)
	tbl.AddRow("sametypesequence", inf.SameTypeSequence)
	tbl.AddRow("dicttype", inf.DictType)
	tbl.Print()
}
