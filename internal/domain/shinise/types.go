package shinise

// ShopFacts is the evaluator input: everything known about one shop.
type ShopFacts struct {
	Name    string
	Address string
	Types   []string
	Reviews []string
}

// ShopScore is the model's qualitative judgment of how much of a
// long-established shop a place is. Score is passed through exactly as the
// model produced it; FoundingYear uses 不明 when it could not be determined.
type ShopScore struct {
	Score        int    `json:"score"`
	Reasoning    string `json:"reasoning"`
	ShortSummary string `json:"short_summary"`
	IsShinise    bool   `json:"is_shinise"`
	FoundingYear string `json:"founding_year"`
}

// ShopGuide is the narrative detail view generated for one shop.
type ShopGuide struct {
	HistoryBackground string `json:"history_background"`
	RecommendedPoints string `json:"recommended_points"`
	Atmosphere        string `json:"atmosphere"`
	BestTimeToVisit   string `json:"best_time_to_visit"`
}

// Config wires runtime settings for the evaluator domain.
type Config struct {
	DefaultGenre string
}

// UnjudgedScore marks shops that fell outside the scoring boundary.
func UnjudgedScore() ShopScore {
	return ShopScore{Reasoning: "未判定", ShortSummary: "-", FoundingYear: "不明"}
}

// DetailsUnavailableScore marks shops whose detail lookup failed, so the
// model was never consulted.
func DetailsUnavailableScore() ShopScore {
	return ShopScore{Reasoning: "詳細情報取得失敗", ShortSummary: "-", FoundingYear: "不明"}
}
