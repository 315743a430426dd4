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
	"context"

	"github.com/kraklabs/parseltongue/internal/errors"
	"github.com/kraklabs/parseltongue/pkg/ingestion"
)

// Ingest runs a full ingestion pass over cfg.RootPath and invalidates the
// adjacency cache so the next graph-algorithm call sees the new edges.
func (s *Service) Ingest(ctx context.Context, cfg ingestion.Config, backendKind string) Envelope {
	if cfg.RootPath == "" {
		return fail("ingest", errors.NewCategoryError(errors.CategoryBadRequest, "root_path is required", "", "", nil))
	}

	result, err := s.pipeline.Run(ctx, cfg, s.backend, backendKind, s.errorsLogPath)
	if err != nil {
		return fail("ingest", errors.NewCategoryError(errors.CategoryStoreFailure, "ingestion failed", err.Error(), "", err))
	}

	s.adj.Invalidate()

	chars := len(result.RunID) + 64
	return ok("ingest", result, estimateTokens(chars))
}

// ReindexFile reconciles the graph with relPath's current on-disk content.
func (s *Service) ReindexFile(ctx context.Context, relPath string) Envelope {
	delta, err := s.engine.Reindex(ctx, s.rootPath, relPath)
	if err != nil {
		return fail("reindex_file", err)
	}

	s.adj.Invalidate()

	return ok("reindex_file", delta, estimateTokens(128))
}
