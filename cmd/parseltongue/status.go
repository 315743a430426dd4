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
	"github.com/kraklabs/parseltongue/pkg/query"
)

// runStatus executes 'parseltongue status <workspace-dir>', printing the
// statistics() and health() endpoints.
func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: parseltongue status [options] <workspace-dir>

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}

	ws, err := bootstrap.OpenWorkspace(fs.Arg(0), nil)
	if err != nil {
		ui.Error(fmt.Sprintf("cannot open workspace: %v", err))
		os.Exit(1)
	}
	defer ws.Close()

	svc, err := query.New(ws.Backend, fs.Arg(0), ws.ErrorsPath, nil)
	if err != nil {
		ui.Error(fmt.Sprintf("cannot build query service: %v", err))
		os.Exit(1)
	}

	ctx := context.Background()
	stats := svc.Statistics(ctx)
	health := svc.Health(ctx)

	if *jsonOutput {
		_ = output.JSON(map[string]any{"statistics": stats, "health": health})
		return
	}

	ui.Header("Workspace status")
	ui.Infof("workspace: %s", ws.Dir)
	if stats.Success {
		ui.Successf("statistics: %v", stats.Data)
	} else {
		ui.Error("statistics: " + stats.Error)
	}
	if health.Success {
		ui.Successf("health: %v", health.Data)
	} else {
		ui.Error("health: " + health.Error)
	}
}
