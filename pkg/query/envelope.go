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
	"github.com/kraklabs/parseltongue/internal/errors"
	"github.com/kraklabs/parseltongue/internal/metrics"
)

// Envelope is the response shape every endpoint returns: a success flag,
// the endpoint name, an endpoint-specific data payload, and an estimated
// token count for the payload.
type Envelope struct {
	Success        bool   `json:"success"`
	Endpoint       string `json:"endpoint"`
	Data           any    `json:"data,omitempty"`
	TokensEstimate int    `json:"tokens_estimate"`
	Error          string `json:"error,omitempty"`
	ErrorCategory  string `json:"error_category,omitempty"`
}

func ok(endpoint string, data any, tokens int) Envelope {
	metrics.RecordQuerySuccess(endpoint, tokens)
	return Envelope{Success: true, Endpoint: endpoint, Data: data, TokensEstimate: tokens}
}

func fail(endpoint string, err error) Envelope {
	env := Envelope{Success: false, Endpoint: endpoint, Error: err.Error()}
	if ue, ok := err.(*errors.UserError); ok {
		env.ErrorCategory = string(ue.Category)
	}
	metrics.RecordQueryError(endpoint, env.ErrorCategory)
	return env
}

// estimateTokens is the crude chars/4 heuristic used to size an endpoint's
// TokensEstimate field when its payload isn't already carrying one from
// pkg/graphalgo.
func estimateTokens(chars int) int {
	if chars <= 0 {
		return 0
	}
	return (chars + 3) / 4
}
