package shinise

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Evaluator exposes the three generative evaluation operations. Every
// operation degrades to a structurally valid fallback value instead of
// returning an error: an empty candidate list or a sentinel score/guide is
// a normal outcome, not a failure of the pipeline.
type Evaluator interface {
	FindShiniseCandidates(ctx context.Context, areaName, genre string) []string
	ScoreShop(ctx context.Context, facts ShopFacts) ShopScore
	GenerateGuide(ctx context.Context, facts ShopFacts) ShopGuide
}

// TextGenerator abstracts a search-augmented text generation call.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

type evaluator struct {
	cfg       Config
	generator TextGenerator
	logger    *slog.Logger
	timezone  *time.Location
	now       func() time.Time
}

// NewEvaluator wires up the evaluator domain. A nil generator is allowed
// and makes every operation take its unconfigured fallback path.
func NewEvaluator(cfg Config, generator TextGenerator, logger *slog.Logger) Evaluator {
	return &evaluator{
		cfg:       cfg,
		generator: generator,
		logger:    logger.With("component", "shinise.evaluator"),
		timezone:  time.FixedZone("Asia/Tokyo", 9*60*60),
		now:       time.Now,
	}
}

// FindShiniseCandidates asks the model for up to ten locally loved shop
// names around the given area.
func (e *evaluator) FindShiniseCandidates(ctx context.Context, areaName, genre string) []string {
	if e.generator == nil {
		e.logger.Warn("candidate discovery skipped, no generator configured")
		return nil
	}

	queryGenre := strings.TrimSpace(genre)
	if queryGenre == "" {
		queryGenre = e.cfg.DefaultGenre
	}

	text, err := e.generator.GenerateContent(ctx, e.buildCandidatePrompt(areaName, queryGenre))
	if err != nil {
		e.logger.Error("candidate discovery failed", "area", areaName, "error", err)
		return nil
	}

	payload := ExtractJSONPayload(text)
	if payload == "" {
		return nil
	}

	var parsed struct {
		Candidates []string `json:"candidates"`
	}
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		e.logger.Error("candidate response malformed", "area", areaName, "error", err)
		return nil
	}

	candidates := make([]string, 0, len(parsed.Candidates))
	for _, name := range parsed.Candidates {
		if clean := strings.TrimSpace(name); clean != "" {
			candidates = append(candidates, clean)
		}
	}
	return candidates
}

// ScoreShop judges how much of a shinise the shop is from its metadata and
// review texts. On any failure it returns a sentinel score that is safe to
// merge into results.
func (e *evaluator) ScoreShop(ctx context.Context, facts ShopFacts) ShopScore {
	if e.generator == nil {
		return ShopScore{Reasoning: "AI configuration missing", ShortSummary: "AI未接続", FoundingYear: "不明"}
	}

	text, err := e.generator.GenerateContent(ctx, e.buildScorePrompt(facts))
	if err != nil {
		return e.scoreError(facts.Name, err)
	}

	payload := ExtractJSONPayload(text)
	if payload == "" {
		return e.scoreError(facts.Name, errors.New("empty payload after extraction"))
	}

	var wire struct {
		Score        float64 `json:"score"`
		Reasoning    string  `json:"reasoning"`
		ShortSummary string  `json:"short_summary"`
		IsShinise    bool    `json:"is_shinise"`
		FoundingYear string  `json:"founding_year"`
	}
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		return e.scoreError(facts.Name, err)
	}

	score := ShopScore{
		Score:        int(wire.Score),
		Reasoning:    wire.Reasoning,
		ShortSummary: wire.ShortSummary,
		IsShinise:    wire.IsShinise,
		FoundingYear: wire.FoundingYear,
	}
	if score.FoundingYear == "" {
		score.FoundingYear = "不明"
	}
	e.logger.Info("shop scored", "shop", facts.Name, "score", score.Score, "is_shinise", score.IsShinise)
	return score
}

func (e *evaluator) scoreError(name string, err error) ShopScore {
	e.logger.Error("shop scoring failed", "shop", name, "error", err)
	return ShopScore{
		Reasoning:    fmt.Sprintf("AIエラー: %s", err.Error()),
		ShortSummary: "判定不能",
		FoundingYear: "不明",
	}
}

// GenerateGuide writes the narrative guide shown on the shop detail view.
func (e *evaluator) GenerateGuide(ctx context.Context, facts ShopFacts) ShopGuide {
	if e.generator == nil {
		return ShopGuide{HistoryBackground: "AI接続エラー"}
	}

	text, err := e.generator.GenerateContent(ctx, e.buildGuidePrompt(facts))
	if err != nil {
		return e.guideError(facts.Name, err)
	}

	payload := ExtractJSONPayload(text)
	if payload == "" {
		return e.guideError(facts.Name, errors.New("empty payload after extraction"))
	}

	var guide ShopGuide
	if err := json.Unmarshal([]byte(payload), &guide); err != nil {
		return e.guideError(facts.Name, err)
	}
	return guide
}

func (e *evaluator) guideError(name string, err error) ShopGuide {
	e.logger.Error("guide generation failed", "shop", name, "error", err)
	return ShopGuide{HistoryBackground: fmt.Sprintf("エラー: %s", err.Error())}
}

func (e *evaluator) today() string {
	now := e.now().In(e.timezone)
	return fmt.Sprintf("%d/%d/%d", now.Year(), int(now.Month()), now.Day())
}

func (e *evaluator) buildCandidatePrompt(areaName, queryGenre string) string {
	return fmt.Sprintf(`あなたの任務は、指定されたエリア（%s周辺）にある「地元で愛される名店（老舗）」を10軒探し出し、その店名のリストを作成することです。
※ 本日は %s です。最新の情報を使用し、閉店した店は除外してください。

【検索条件】
- エリア: %s駅 周辺
- カテゴリ: %s
- 必須条件:
    1. **創業5年以上**（できれば10年以上が望ましい）
    2. **地域密着型**（地元の人に愛されている）
    3. **チェーン店は絶対に除外**してください（大手資本が入っていない個店を優先）。

【優先順位（重要）】
- **食べログ等のグルメサイトで評価が高い順**（3.5以上を優先）に選出してください。
- 口コミ数が多い店を優先してください。

【除外対象】
- 全国展開しているチェーン店
- フランチャイズ店
- 商業施設内のフードコート（単独店舗ならOKだが、路面店を優先）
- 閉店した店舗

【出力形式: JSON】
以下のフォーマットで、店名のみを配列で返してください。余計な説明は不要です。
{
  "candidates": [
    "店名A",
    "店名B",
    ...
  ]
}`, areaName, e.today(), areaName, queryGenre)
}

func (e *evaluator) buildScorePrompt(facts ShopFacts) string {
	return fmt.Sprintf(`あなたは「老舗鑑定の達人」です。
以下の店舗情報と口コミをもとに、この店がどれくらい「老舗（Shinise）」としての価値があるかを定性的に評価し、JSON形式で回答してください。
※ 本日は %s です。最新の情報を使って調査してください。

【判定基準】
- 単なる営業年数だけでなく、「語られ方」を重視する。
- 「地元で愛されている」「昭和の雰囲気」「代々受け継がれる味」「看板娘/名物店主」などのナラティブな要素を高く評価する。
- チェーン店は低く評価する。
- スコアは0〜100点。80点以上は「認定老舗」。
- **創業年はWEB検索で必ず調査してください**。見つからない場合は「不明」としてください。

【入力情報】
店名: %s
住所: %s
ジャンル: %s
口コミ要約: %s

【出力JSONフォーマット】
{
  "score": number,
  "reasoning": "なぜそのスコアなのか、具体的なエピソードや雰囲気に触れて100文字程度で解説",
  "short_summary": "検索結果カードに表示する、情感あふれるキャッチコピー（20文字以内）",
  "is_shinise": boolean,
  "founding_year": "創業年（例: 1965年創業）。不明な場合は『不明』と記載"
}`, e.today(), facts.Name, orUnknown(facts.Address), typesOrUnknown(facts.Types), reviewsOrNone(facts.Reviews))
}

func (e *evaluator) buildGuidePrompt(facts ShopFacts) string {
	return fmt.Sprintf(`あなたは「老舗鑑定の達人」です。
以下の店舗情報と口コミをもとに、この店の魅力を語る「店主のガイド」を作成してください。JSON形式で回答してください。
※ 本日は %s です。WEB検索を活用し、最新の情報（営業状況・メニュー・口コミ等）を反映してください。

【入力情報】
店名: %s
住所: %s
ジャンル: %s
口コミ要約: %s

【出力JSONフォーマット】
{
  "history_background": "この店の歴史や背景について、物語調で（150文字程度）",
  "recommended_points": "絶対に食べるべき一品や、見るべきポイント（100文字程度）",
  "atmosphere": "店内の雰囲気や、どんな時間を過ごせるか（50文字程度）",
  "best_time_to_visit": "おすすめの訪問時間帯や混雑状況の推測（30文字程度）"
}`, e.today(), facts.Name, orUnknown(facts.Address), typesOrUnknown(facts.Types), reviewsOrNone(facts.Reviews))
}

func orUnknown(value string) string {
	if strings.TrimSpace(value) == "" {
		return "不明"
	}
	return value
}

func typesOrUnknown(types []string) string {
	if len(types) == 0 {
		return "不明"
	}
	return strings.Join(types, ", ")
}

func reviewsOrNone(reviews []string) string {
	if len(reviews) == 0 {
		return "なし"
	}
	return strings.Join(reviews, "\n")
}
