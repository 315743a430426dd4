// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package main implements a thin CLI shim over the Parseltongue library
// packages: enough to demonstrate ingest/reindex/query wiring end to end,
// not a deliverable in its own right. A full CLI dispatcher, the HTTP
// transport it could front, and process-wide logging configuration are
// all out of scope here — an agent harness or HTTP server is expected to
// call pkg/query.Service directly.
//
// Usage:
//
//	parseltongue init                       Create .parseltongue/workspace.yaml
//	parseltongue ingest [--root DIR]         Ingest a source tree into a fresh workspace
//	parseltongue reindex <workspace> <root> <file>  Reindex one file in an existing workspace
//	parseltongue query <workspace> <op> ...  Run one query endpoint
//	parseltongue status <workspace>          Print workspace statistics
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/parseltongue/internal/ui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	noColor := flag.Bool("no-color", false, "Disable colored output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Parseltongue - code-intelligence ingestion and query CLI

Usage:
  parseltongue <command> [options]

Commands:
  init       Create .parseltongue/workspace.yaml
  ingest     Ingest a source tree into a fresh workspace
  reindex    Reindex one file in an existing workspace
  query      Run one query endpoint against an existing workspace
  status     Print workspace statistics and health

Global Options:
  --no-color   Disable colored output
  --version    Show version and exit

`)
	}

	flag.Parse()
	ui.InitColors(*noColor)

	if *showVersion {
		fmt.Printf("parseltongue version %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "init":
		runInit(cmdArgs)
	case "ingest":
		runIngest(cmdArgs)
	case "reindex":
		runReindex(cmdArgs)
	case "query":
		runQuery(cmdArgs)
	case "status":
		runStatus(cmdArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
