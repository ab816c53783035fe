package retrieval

import (
	"sort"
	"strings"

	"github.com/modlens/modlens/internal/moderation"
)

// MaxPolicies is the size of the final policy set.
const MaxPolicies = 3

const unknownProvider = "Unknown"

// SelectDiverse picks up to n candidates from a list already sorted by
// composite score. The first pass takes the best candidate of each distinct
// provider; the second fills the remaining slots with the best leftovers.
// The result is ordered by composite score and has min(n, len(scored))
// entries.
func SelectDiverse(scored []moderation.PolicyCandidate, n int) []moderation.PolicyCandidate {
	if n <= 0 {
		return nil
	}
	if len(scored) <= n {
		out := make([]moderation.PolicyCandidate, len(scored))
		copy(out, scored)
		return out
	}

	picked := make([]bool, len(scored))
	providers := make(map[string]bool)
	count := 0

	for i, c := range scored {
		key := providerKey(c.Provider)
		if providers[key] {
			continue
		}
		providers[key] = true
		picked[i] = true
		count++
		if count == n {
			break
		}
	}

	for i := range scored {
		if count == n {
			break
		}
		if !picked[i] {
			picked[i] = true
			count++
		}
	}

	out := make([]moderation.PolicyCandidate, 0, n)
	for i, c := range scored {
		if picked[i] {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompositeScore > out[j].CompositeScore
	})
	return out
}

func providerKey(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return strings.ToLower(unknownProvider)
	}
	return strings.ToLower(p)
}
