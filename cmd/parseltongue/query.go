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

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/parseltongue/internal/bootstrap"
	"github.com/kraklabs/parseltongue/internal/output"
	"github.com/kraklabs/parseltongue/pkg/query"
)

// runQuery executes 'parseltongue query <workspace-dir> <op> [args...]',
// dispatching to one of the query endpoints and printing the resulting
// Envelope as JSON.
func runQuery(args []string) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: parseltongue query <workspace-dir> <operation> [args...]

Operations:
  list_entities [path-filter] [limit]
  entity_detail <key>
  fuzzy_search <query> [threshold] [limit]
  list_edges [around-key] [limit]
  reverse_callers <key>
  forward_callees <key>
  blast_radius <key> [hops]
  cycles
  hotspots [top]
  semantic_clusters
  leiden_clusters [resolution] [max-iter]
  kcore [k]
  centrality <pagerank|betweenness> [top] [damping]
  entropy [threshold]
  ck_metrics [key]
  sqale_debt [key] [min-debt]
  smart_context <focus> [tokens]
  ingestion_diagnostics
  statistics
  health
`)
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 2 {
		fs.Usage()
		os.Exit(1)
	}

	wsDir := fs.Arg(0)
	op := fs.Arg(1)
	opArgs := fs.Args()[2:]

	ws, err := bootstrap.OpenWorkspace(wsDir, nil)
	if err != nil {
		_ = output.JSONError(fmt.Errorf("cannot open workspace: %w", err))
		os.Exit(1)
	}
	defer ws.Close()

	svc, err := query.New(ws.Backend, wsDir, ws.ErrorsPath, nil)
	if err != nil {
		_ = output.JSONError(fmt.Errorf("cannot build query service: %w", err))
		os.Exit(1)
	}

	env := dispatch(context.Background(), svc, op, opArgs)
	_ = output.JSON(env)
	if !env.Success {
		os.Exit(1)
	}
}

func dispatch(ctx context.Context, svc *query.Service, op string, args []string) query.Envelope {
	arg := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	}
	argInt := func(i int) int {
		n, _ := strconv.Atoi(arg(i))
		return n
	}
	argFloat := func(i int) float64 {
		f, _ := strconv.ParseFloat(arg(i), 64)
		return f
	}
	argIntDefault := func(i, def int) int {
		if arg(i) == "" {
			return def
		}
		return argInt(i)
	}

	switch op {
	case "list_entities":
		return svc.ListEntities(ctx, arg(0), argInt(1))
	case "entity_detail":
		return svc.EntityDetail(ctx, arg(0))
	case "fuzzy_search":
		return svc.FuzzySearchEndpoint(ctx, arg(0), argFloat(1), argInt(2))
	case "list_edges":
		return svc.ListEdges(ctx, arg(0), argInt(1))
	case "reverse_callers":
		return svc.ReverseCallers(ctx, arg(0))
	case "forward_callees":
		return svc.ForwardCallees(ctx, arg(0))
	case "blast_radius":
		// An omitted hop count means "use the default", not zero hops.
		return svc.BlastRadiusEndpoint(ctx, arg(0), argIntDefault(1, -1))
	case "cycles":
		return svc.Cycles(ctx)
	case "hotspots":
		return svc.HotspotsEndpoint(ctx, argInt(0))
	case "semantic_clusters":
		return svc.SemanticClusters(ctx)
	case "leiden_clusters":
		return svc.LeidenClusters(ctx, argFloat(0), argInt(1))
	case "kcore":
		return svc.KCoreEndpoint(ctx, argInt(0))
	case "centrality":
		return svc.CentralityEndpoint(ctx, query.CentralityMode(arg(0)), argInt(1), argFloat(2))
	case "entropy":
		return svc.EntropyEndpoint(ctx, argFloat(0))
	case "ck_metrics":
		return svc.CKMetricsEndpoint(ctx, arg(0))
	case "sqale_debt":
		return svc.SQALEDebtEndpoint(ctx, arg(0), argFloat(1))
	case "smart_context":
		return svc.SmartContextEndpoint(ctx, arg(0), argInt(1))
	case "ingestion_diagnostics":
		return svc.IngestionDiagnostics(ctx)
	case "statistics":
		return svc.Statistics(ctx)
	case "health":
		return svc.Health(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown query operation: %s\n", op)
		os.Exit(1)
		return query.Envelope{}
	}
}
