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
	"strings"

	edlib "github.com/hbollon/go-edlib"
)

// SearchableEntity is the minimal shape FuzzySearch matches against: an
// entity's key and display name.
type SearchableEntity struct {
	Key  string
	Name string
}

// FuzzyHit is one ranked match.
type FuzzyHit struct {
	Key        string
	Name       string
	Similarity float64
}

// FuzzySearchResult is the ranked-hits output.
type FuzzySearchResult struct {
	Hits           []FuzzyHit
	TokensEstimate int
}

// FuzzySearch matches query against every entity's isgl1_key and name,
// first via substring containment (always a hit, similarity 1.0) and
// otherwise via Jaro-Winkler similarity (github.com/hbollon/go-edlib),
// keeping only hits at or above threshold. Results are ranked by
// descending similarity then ascending key.
func FuzzySearch(entities []SearchableEntity, query string, threshold float64, limit int) FuzzySearchResult {
	if len(entities) == 0 || query == "" {
		return FuzzySearchResult{}
	}
	if threshold <= 0 {
		threshold = 0.75
	}

	queryLower := strings.ToLower(query)
	var hits []FuzzyHit

	for _, e := range entities {
		nameLower := strings.ToLower(e.Name)
		keyLower := strings.ToLower(e.Key)

		if strings.Contains(nameLower, queryLower) || strings.Contains(keyLower, queryLower) {
			hits = append(hits, FuzzyHit{Key: e.Key, Name: e.Name, Similarity: 1.0})
			continue
		}

		sim, err := edlib.StringsSimilarity(queryLower, nameLower, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if float64(sim) >= threshold {
			hits = append(hits, FuzzyHit{Key: e.Key, Name: e.Name, Similarity: float64(sim)})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].Key < hits[j].Key
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	chars := 0
	for _, h := range hits {
		chars += len(h.Key) + len(h.Name) + 8
	}

	return FuzzySearchResult{Hits: hits, TokensEstimate: estimateTokens(chars)}
}
