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

package query

import (
	"log/slog"

	"github.com/kraklabs/parseltongue/pkg/adjacency"
	"github.com/kraklabs/parseltongue/pkg/ingestion"
	"github.com/kraklabs/parseltongue/pkg/reindex"
	"github.com/kraklabs/parseltongue/pkg/storage"
)

// Service wires together the graph store, adjacency cache, ingestion
// pipeline, and reindex engine behind one set of validated query
// endpoints. One Service serves one workspace.
type Service struct {
	backend  *storage.EmbeddedBackend
	adj      *adjacency.Builder
	pipeline *ingestion.Pipeline
	engine   *reindex.Engine
	logger   *slog.Logger

	rootPath      string
	errorsLogPath string
}

// New builds a Service over an already-open workspace backend.
func New(backend *storage.EmbeddedBackend, rootPath, errorsLogPath string, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pipeline, err := ingestion.New(logger)
	if err != nil {
		return nil, err
	}
	engine, err := reindex.New(backend, logger)
	if err != nil {
		return nil, err
	}

	return &Service{
		backend:       backend,
		adj:           adjacency.NewBuilder(backend, adjacency.DefaultTTL),
		pipeline:      pipeline,
		engine:        engine,
		logger:        logger,
		rootPath:      rootPath,
		errorsLogPath: errorsLogPath,
	}, nil
}
