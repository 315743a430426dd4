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
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/parseltongue/internal/ui"
	"github.com/kraklabs/parseltongue/pkg/workspace"
)

// runInit executes 'parseltongue init', writing a .parseltongue/workspace.yaml
// configuration file for the current directory.
func runInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite an existing configuration")
	projectID := fs.String("project-id", "", "Project identifier (default: directory name)")
	engine := fs.String("engine", "", "CozoDB storage engine: rocksdb, sqlite, or mem")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: parseltongue init [options]

Creates .parseltongue/workspace.yaml configuration file.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cwd, err := os.Getwd()
	if err != nil {
		ui.Error(fmt.Sprintf("cannot get current directory: %v", err))
		os.Exit(1)
	}

	configPath := workspace.ConfigPath(cwd)
	if _, statErr := os.Stat(configPath); statErr == nil && !*force {
		ui.Error(fmt.Sprintf("%s already exists. Use --force to overwrite.", configPath))
		os.Exit(1)
	}

	pid := *projectID
	if pid == "" {
		pid = filepath.Base(cwd)
	}
	cfg := workspace.DefaultConfig(pid)
	if *engine != "" {
		cfg.Engine = *engine
	}

	if err := workspace.SaveConfig(cfg, configPath); err != nil {
		ui.Error(fmt.Sprintf("cannot save configuration: %v", err))
		os.Exit(1)
	}
	ui.Success(fmt.Sprintf("Created %s", configPath))
}
