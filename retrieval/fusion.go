package retrieval

import (
	"sort"
)

// ChannelResults pairs one channel's ranked output with its fusion weight.
type ChannelResults struct {
	Channel string
	Weight  float64
	Results []*Result
}

// FuseWithRRF merges ranked lists using weighted Reciprocal Rank Fusion:
//
//	score(d) = Σ weight_c / (k + rank_c(d) + 1)
//
// where rank is zero-based within each channel's list. An item appearing in
// several channels accumulates all its contributions; its Result fields come
// from the first channel that produced it, in the order given. Output is
// sorted by fused score descending, ties broken by ID, so the ordering is
// deterministic for identical inputs.
func FuseWithRRF(channels []ChannelResults, k int) []*Result {
	if k < 1 {
		k = DefaultRRFK
	}

	scoreMap := make(map[string]float64)
	resultMap := make(map[string]*Result)
	var order []string

	for _, channel := range channels {
		for rank, result := range channel.Results {
			score := channel.Weight / float64(k+rank+1)
			if _, exists := resultMap[result.ID]; !exists {
				resultMap[result.ID] = result
				order = append(order, result.ID)
			}
			scoreMap[result.ID] += score
		}
	}

	fused := make([]*Result, 0, len(order))
	for _, id := range order {
		result := resultMap[id].clone()
		result.Score = scoreMap[id]
		fused = append(fused, result)
	}

	sort.SliceStable(fused, func(i, j int) bool {
		if fused[i].Score != fused[j].Score {
			return fused[i].Score > fused[j].Score
		}
		return fused[i].ID < fused[j].ID
	})

	return fused
}
