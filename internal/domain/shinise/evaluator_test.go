package shinise

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestEvaluator(gen TextGenerator) *evaluator {
	return &evaluator{
		cfg:       Config{DefaultGenre: "飲食店、総菜屋、甘味処、和菓子屋"},
		generator: gen,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		timezone:  time.FixedZone("Asia/Tokyo", 9*60*60),
		now: func() time.Time {
			return time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
		},
	}
}

func TestFindShiniseCandidatesSuccess(t *testing.T) {
	gen := &stubGenerator{text: "```json\n{\"candidates\": [\"店A\", \" 店B \", \"\"]}\n```"}
	ev := newTestEvaluator(gen)

	candidates := ev.FindShiniseCandidates(context.Background(), "神田", "")
	require.Equal(t, []string{"店A", "店B"}, candidates)

	require.Len(t, gen.prompts, 1)
	require.Contains(t, gen.prompts[0], "神田駅 周辺")
	require.Contains(t, gen.prompts[0], "飲食店、総菜屋、甘味処、和菓子屋")
	require.Contains(t, gen.prompts[0], "2026/8/30")
}

func TestFindShiniseCandidatesGenreOverridesDefault(t *testing.T) {
	gen := &stubGenerator{text: `{"candidates": []}`}
	ev := newTestEvaluator(gen)

	candidates := ev.FindShiniseCandidates(context.Background(), "神田", "蕎麦")
	require.Empty(t, candidates)
	require.Contains(t, gen.prompts[0], "カテゴリ: 蕎麦")
	require.NotContains(t, gen.prompts[0], "甘味処")
}

func TestFindShiniseCandidatesGeneratorError(t *testing.T) {
	ev := newTestEvaluator(&stubGenerator{err: errors.New("boom")})
	require.Empty(t, ev.FindShiniseCandidates(context.Background(), "神田", ""))
}

func TestFindShiniseCandidatesMalformedJSON(t *testing.T) {
	ev := newTestEvaluator(&stubGenerator{text: "申し訳ありませんが、お答えできません。"})
	require.Empty(t, ev.FindShiniseCandidates(context.Background(), "神田", ""))
}

func TestFindShiniseCandidatesNoGenerator(t *testing.T) {
	ev := newTestEvaluator(nil)
	require.Empty(t, ev.FindShiniseCandidates(context.Background(), "神田", ""))
}

func TestScoreShopSuccess(t *testing.T) {
	gen := &stubGenerator{text: `{"score": 87, "reasoning": "昭和創業の趣", "short_summary": "路地裏の名店", "is_shinise": true, "founding_year": "1965年創業"}`}
	ev := newTestEvaluator(gen)

	score := ev.ScoreShop(context.Background(), ShopFacts{
		Name:    "店A",
		Address: "東京都千代田区神田1-1",
		Types:   []string{"restaurant"},
		Reviews: []string{"昔ながらの味", "店主が名物"},
	})

	require.Equal(t, 87, score.Score)
	require.Equal(t, "昭和創業の趣", score.Reasoning)
	require.Equal(t, "路地裏の名店", score.ShortSummary)
	require.True(t, score.IsShinise)
	require.Equal(t, "1965年創業", score.FoundingYear)

	require.Contains(t, gen.prompts[0], "店名: 店A")
	require.Contains(t, gen.prompts[0], "昔ながらの味\n店主が名物")
}

func TestScoreShopUnknownFieldsDefault(t *testing.T) {
	gen := &stubGenerator{text: `{"score": 10, "reasoning": "情報不足", "short_summary": "謎"}`}
	ev := newTestEvaluator(gen)

	score := ev.ScoreShop(context.Background(), ShopFacts{Name: "店B"})
	require.Equal(t, "不明", score.FoundingYear)
	require.Contains(t, gen.prompts[0], "住所: 不明")
	require.Contains(t, gen.prompts[0], "ジャンル: 不明")
	require.Contains(t, gen.prompts[0], "口コミ要約: なし")
}

func TestScoreShopOutOfRangePassthrough(t *testing.T) {
	gen := &stubGenerator{text: `{"score": 150, "reasoning": "r", "short_summary": "s", "is_shinise": true, "founding_year": "不明"}`}
	ev := newTestEvaluator(gen)

	score := ev.ScoreShop(context.Background(), ShopFacts{Name: "店C"})
	require.Equal(t, 150, score.Score)
}

func TestScoreShopGeneratorError(t *testing.T) {
	ev := newTestEvaluator(&stubGenerator{err: errors.New("deadline exceeded")})

	score := ev.ScoreShop(context.Background(), ShopFacts{Name: "店D"})
	require.Zero(t, score.Score)
	require.True(t, strings.HasPrefix(score.Reasoning, "AIエラー: "))
	require.Equal(t, "判定不能", score.ShortSummary)
	require.False(t, score.IsShinise)
	require.Equal(t, "不明", score.FoundingYear)
}

func TestScoreShopMalformedJSON(t *testing.T) {
	ev := newTestEvaluator(&stubGenerator{text: "```json\nnot json at all\n```"})

	score := ev.ScoreShop(context.Background(), ShopFacts{Name: "店E"})
	require.Zero(t, score.Score)
	require.Equal(t, "判定不能", score.ShortSummary)
}

func TestScoreShopNoGenerator(t *testing.T) {
	ev := newTestEvaluator(nil)

	score := ev.ScoreShop(context.Background(), ShopFacts{Name: "店F"})
	require.Zero(t, score.Score)
	require.Equal(t, "AI configuration missing", score.Reasoning)
	require.Equal(t, "AI未接続", score.ShortSummary)
	require.Equal(t, "不明", score.FoundingYear)
}

func TestGenerateGuideSuccess(t *testing.T) {
	gen := &stubGenerator{text: "```json\n{\"history_background\":\"明治から続く\",\"recommended_points\":\"天丼\",\"atmosphere\":\"静か\",\"best_time_to_visit\":\"平日昼\"}\n```"}
	ev := newTestEvaluator(gen)

	guide := ev.GenerateGuide(context.Background(), ShopFacts{Name: "店G"})
	require.Equal(t, "明治から続く", guide.HistoryBackground)
	require.Equal(t, "天丼", guide.RecommendedPoints)
	require.Equal(t, "静か", guide.Atmosphere)
	require.Equal(t, "平日昼", guide.BestTimeToVisit)
}

func TestGenerateGuideGeneratorError(t *testing.T) {
	ev := newTestEvaluator(&stubGenerator{err: errors.New("unavailable")})

	guide := ev.GenerateGuide(context.Background(), ShopFacts{Name: "店H"})
	require.True(t, strings.HasPrefix(guide.HistoryBackground, "エラー: "))
	require.Empty(t, guide.RecommendedPoints)
}

func TestGenerateGuideNoGenerator(t *testing.T) {
	ev := newTestEvaluator(nil)

	guide := ev.GenerateGuide(context.Background(), ShopFacts{Name: "店I"})
	require.Equal(t, "AI接続エラー", guide.HistoryBackground)
}

type stubGenerator struct {
	text    string
	err     error
	prompts []string
}

func (s *stubGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}
