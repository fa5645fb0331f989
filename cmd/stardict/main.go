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

// Command stardict is a command-line front end for the go-stardict
// library: it opens a StarDict dictionary directory and looks up
// words, prints .ifo metadata, or fetches res/ side files.
package main

import "os"

func main() {
	app := newStardictApp()
	_ = app.Run(os.Args)
}
