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

package graphalgo

import (
	"sort"

	"github.com/kraklabs/parseltongue/pkg/adjacency"
)

const (
	sqaleCBOThreshold  = 10
	sqaleCBOHours      = 4.0
	sqaleLCOMThreshold = 0.8
	sqaleLCOMHours     = 8.0
	sqaleCCThreshold   = 15
	sqaleCCHours       = 2.0
)

// SQALEDebt is one entity's remediation estimate, broken down by the
// violation kinds that contributed to it.
type SQALEDebt struct {
	Key            string
	RemediationHrs float64
	Violations     []string
}

// SQALEResult is the technical-debt scoring run's output.
type SQALEResult struct {
	Debts          []SQALEDebt
	TotalHrs       float64
	TokensEstimate int
}

// ComputeSQALE sums remediation hours per entity using fixed constants:
// CBO>10 adds 4h, LCOM>0.8 adds 8h, WMC>15 (standing in for cyclomatic
// complexity, per ComputeCK's documented proxy) adds 2h. Entities with no
// violations are omitted from the result entirely; absent metrics
// contribute zero rather than being treated as violations.
func ComputeSQALE(g *adjacency.Graph) SQALEResult {
	if g.Empty() {
		return SQALEResult{}
	}

	ck := ComputeCK(g)
	var debts []SQALEDebt
	total := 0.0

	for _, m := range ck.Metrics {
		var hrs float64
		var violations []string

		if m.CBO > sqaleCBOThreshold {
			hrs += sqaleCBOHours
			violations = append(violations, "CBO>10")
		}
		if m.LCOM > sqaleLCOMThreshold {
			hrs += sqaleLCOMHours
			violations = append(violations, "LCOM>0.8")
		}
		if m.WMC > sqaleCCThreshold {
			hrs += sqaleCCHours
			violations = append(violations, "CC>15")
		}

		if hrs > 0 {
			debts = append(debts, SQALEDebt{Key: m.Key, RemediationHrs: hrs, Violations: violations})
			total += hrs
		}
	}

	sort.Slice(debts, func(i, j int) bool {
		if debts[i].RemediationHrs != debts[j].RemediationHrs {
			return debts[i].RemediationHrs > debts[j].RemediationHrs
		}
		return debts[i].Key < debts[j].Key
	})

	chars := 0
	for _, d := range debts {
		chars += len(d.Key) + 24
	}

	return SQALEResult{Debts: debts, TotalHrs: total, TokensEstimate: estimateTokens(chars)}
}
