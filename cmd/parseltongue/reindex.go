// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/parseltongue/internal/bootstrap"
	"github.com/kraklabs/parseltongue/internal/output"
	"github.com/kraklabs/parseltongue/internal/ui"
	"github.com/kraklabs/parseltongue/pkg/reindex"
)

// runReindex executes 'parseltongue reindex <workspace-dir> <root> <file>':
// the incremental reindex engine scoped to one file, the kind of call a
// debounced file-watcher (out of scope here, see pkg/reindex/contract.go)
// would make on every change notification.
func runReindex(args []string) {
	fs := flag.NewFlagSet("reindex", flag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "Output the delta as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: parseltongue reindex [options] <workspace-dir> <root> <relative-file>

Reconciles the graph with one file's current on-disk content.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 3 {
		fs.Usage()
		os.Exit(1)
	}
	wsDir, root, relPath := fs.Arg(0), fs.Arg(1), fs.Arg(2)

	ws, err := bootstrap.OpenWorkspace(wsDir, nil)
	if err != nil {
		ui.Error(fmt.Sprintf("cannot open workspace: %v", err))
		os.Exit(1)
	}
	defer ws.Close()

	engine, err := reindex.New(ws.Backend, nil)
	if err != nil {
		ui.Error(fmt.Sprintf("cannot build reindex engine: %v", err))
		os.Exit(1)
	}

	delta, err := engine.Reindex(context.Background(), root, relPath)
	if err != nil {
		ui.Error(err.Error())
		os.Exit(1)
	}

	if *jsonOutput {
		_ = output.JSON(delta)
		return
	}

	if !delta.HashChanged {
		ui.Successf("%s unchanged (%dms)", relPath, delta.ProcessingTimeMs)
		return
	}
	ui.Successf("%s reindexed: entities %d -> %d, edges +%d -%d (%dms)",
		relPath, delta.EntitiesBefore, delta.EntitiesAfter, delta.EdgesAdded, delta.EdgesRemoved, delta.ProcessingTimeMs)
}
