package retrieval

// Evaluation thresholds, on the normalized 0-100 scale.
const (
	usefulScoreThreshold = 60.0
	mediumScoreThreshold = 40.0
)

// SuggestedAction is the recommended follow-up after evaluating results.
type SuggestedAction string

const (
	ActionUse    SuggestedAction = "use"    // use the results as-is
	ActionExpand SuggestedAction = "expand" // refine or broaden the query
	ActionDirect SuggestedAction = "direct" // answer without retrieved context
)

// Evaluation classifies a finished result list. Purely advisory: the engine
// never acts on it, callers may.
type Evaluation struct {
	IsUseful        bool
	Reason          string
	SuggestedAction SuggestedAction
	TopScore        float64
	ScoreSpread     float64 // gap between the top two scores
}

// EvaluateResults classifies normalized retrieval output.
func EvaluateResults(results []*Result) *Evaluation {
	if len(results) == 0 {
		return &Evaluation{
			IsUseful:        false,
			Reason:          "empty_results",
			SuggestedAction: ActionDirect,
		}
	}

	topScore := results[0].Score
	var scoreSpread float64
	if len(results) >= 2 {
		scoreSpread = topScore - results[1].Score
	}

	switch {
	case topScore >= usefulScoreThreshold:
		return &Evaluation{
			IsUseful:        true,
			Reason:          "high_relevance",
			SuggestedAction: ActionUse,
			TopScore:        topScore,
			ScoreSpread:     scoreSpread,
		}
	case topScore >= mediumScoreThreshold:
		return &Evaluation{
			IsUseful:        true,
			Reason:          "medium_relevance",
			SuggestedAction: ActionUse,
			TopScore:        topScore,
			ScoreSpread:     scoreSpread,
		}
	default:
		return &Evaluation{
			IsUseful:        false,
			Reason:          "low_relevance",
			SuggestedAction: ActionExpand,
			TopScore:        topScore,
			ScoreSpread:     scoreSpread,
		}
	}
}
