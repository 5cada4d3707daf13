package retrieval

// NormalizeScores rescales scores linearly so the best result lands at 100.
// RRF scores live in a narrow band near zero and reranker scores on yet
// another scale; the 0-100 range gives callers one stable interpretation.
// When the maximum score is not positive the list is returned unchanged:
// scaling by a zero or negative maximum would be meaningless.
func NormalizeScores(results []*Result) []*Result {
	if len(results) == 0 {
		return results
	}

	maxScore := results[0].Score
	for _, result := range results[1:] {
		if result.Score > maxScore {
			maxScore = result.Score
		}
	}
	if maxScore <= 0 {
		return results
	}

	normalized := make([]*Result, len(results))
	for i, result := range results {
		copied := result.clone()
		copied.Score = result.Score / maxScore * 100
		normalized[i] = copied
	}
	return normalized
}
