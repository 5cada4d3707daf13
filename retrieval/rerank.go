package retrieval

import (
	"context"

	"github.com/hrygo/loreseek/ai"
)

// rerankResults reorders the fused list with a cross-encoder. The reranker
// returns (index, score) pairs where index points back into the documents
// slice, so results are matched positionally and never by content equality.
// Items the reranker did not return are appended after the scored ones in
// their fused order. The returned list is truncated to topN when topN > 0.
func rerankResults(ctx context.Context, reranker ai.RerankerService, query string, results []*Result, topN int) ([]*Result, error) {
	if len(results) == 0 {
		return results, nil
	}

	documents := make([]string, len(results))
	for i, result := range results {
		documents[i] = rerankDocument(result)
	}

	ranked, err := reranker.Rerank(ctx, query, documents, topN)
	if err != nil {
		return nil, err
	}

	reordered := make([]*Result, 0, len(results))
	seen := make(map[int]bool, len(ranked))
	for _, r := range ranked {
		if r.Index < 0 || r.Index >= len(results) || seen[r.Index] {
			continue
		}
		seen[r.Index] = true
		result := results[r.Index].clone()
		result.Score = float64(r.Score)
		reordered = append(reordered, result)
	}

	// Results the reranker dropped keep their fused order at the tail.
	for i, result := range results {
		if !seen[i] {
			reordered = append(reordered, result)
		}
	}

	if topN > 0 && len(reordered) > topN {
		reordered = reordered[:topN]
	}
	return reordered, nil
}

// rerankDocument is the text shown to the cross-encoder for one result.
func rerankDocument(result *Result) string {
	if result.DisplayName != "" && result.DisplayName != result.Content {
		return result.DisplayName + "\n" + result.Content
	}
	return result.Content
}
