package types

// ScoreResult is the output of a scoring pass over a candidate/job pair.
type ScoreResult struct {
	Score           int      `json:"score" validate:"min=0,max=100"`
	MissingKeywords []string `json:"missing_keywords"`
	Explanation     string   `json:"explanation"`
}

// Validate checks the score range.
func (s *ScoreResult) Validate() error {
	return validate.Struct(s)
}
