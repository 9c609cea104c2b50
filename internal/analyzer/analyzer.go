package analyzer

import (
	"context"
	"log/slog"
	"math"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/ferretcode/lovebug/internal/types"
)

// LovebugKeywords are the search terms used by the crawler.
var LovebugKeywords = []string{
	"러브버그", "붉은등우단털파리", "서울 벌레", "빨간벌레",
	"차에 붙은 벌레", "파리 떼", "벌레 많아", "벌레 지옥",
	"플레인 파리", "러브버그 습격", "벌레 떼거리",
}

var (
	positiveWords = []string{"좋다", "괜찮다", "재미있다", "신기하다", "놀랍다"}
	negativeWords = []string{"싫다", "짜증", "혐오", "더럽다", "역겹다", "끔찍하다", "최악", "지옥"}

	highIntensityWords   = []string{"엄청", "완전", "진짜", "대박", "미친", "떼거리", "지옥"}
	mediumIntensityWords = []string{"많이", "꽤", "제법", "좀", "조금"}
	lowIntensityWords    = []string{"약간", "살짝", "가끔"}

	confidenceKeywords = []string{"러브버그", "붉은등우단털파리", "빨간벌레", "차에 붙은"}
	timeWords          = []string{"지금", "오늘", "방금", "현재", "지금껏"}

	directKeywords   = []string{"러브버그", "붉은등우단털파리"}
	indirectKeywords = []string{"빨간벌레", "파리", "벌레", "차에 붙은"}
	contextKeywords  = []string{"떼", "많아", "붙어", "달라붙"}

	criticalSeverityWords = []string{"지옥", "떼거리", "엄청", "미친", "완전"}
	highSeverityWords     = []string{"많아", "진짜", "심해", "대박"}
	mediumSeverityWords   = []string{"좀", "꽤", "조금"}

	mentionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`([가-힣]+역)\s*에서?`),
		regexp.MustCompile(`([가-힣]+구)\s*에서?`),
		regexp.MustCompile(`([가-힣]+동)\s*에서?`),
		regexp.MustCompile(`([가-힣]+로)\s*에서?`),
		regexp.MustCompile(`([가-힣]+거리)\s*에서?`),
		regexp.MustCompile(`([가-힣]+공원)\s*에서?`),
		regexp.MustCompile(`([가-힣]+대학교?)\s*에서?`),
	}

	keywordPatterns = []*regexp.Regexp{
		regexp.MustCompile(`([가-힣]+역)`),
		regexp.MustCompile(`([가-힣]+구)`),
		regexp.MustCompile(`([가-힣]+동)`),
		regexp.MustCompile(`([가-힣]+로)`),
		regexp.MustCompile(`([가-힣]+거리)`),
	}
)

const (
	IntensityHigh   = "high"
	IntensityMedium = "medium"
	IntensityLow    = "low"
)

type Analysis struct {
	Sentiment  float64        `json:"sentiment"`
	Intensity  string         `json:"intensity"`
	Confidence float64        `json:"confidence"`
	Relevance  float64        `json:"relevance"`
	Severity   types.Severity `json:"severity"`
	Keywords   []string       `json:"keywords"`
	WordCount  int            `json:"word_count"`
	CharCount  int            `json:"char_count"`
	Classified bool           `json:"classified"`
}

// Classifier refines the rule-based analysis, typically with a language model.
type Classifier interface {
	Classify(ctx context.Context, text string) (*Classification, error)
}

type Classification struct {
	Relevant   bool    `json:"relevant"`
	Severity   string  `json:"severity"`
	Sentiment  float64 `json:"sentiment"`
	Confidence float64 `json:"confidence"`
}

type Analyzer struct {
	classifier Classifier
	logger     *slog.Logger
}

// New creates an analyzer. classifier may be nil.
func New(classifier Classifier, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		classifier: classifier,
		logger:     logger,
	}
}

func (a *Analyzer) Analyze(ctx context.Context, text string) Analysis {
	analysis := Analysis{
		Sentiment:  Sentiment(text),
		Intensity:  Intensity(text),
		Confidence: Confidence(text),
		Relevance:  Relevance(text),
		Severity:   Severity(text),
		Keywords:   Keywords(text),
		WordCount:  len(strings.Fields(text)),
		CharCount:  utf8.RuneCountInString(text),
	}

	if a.classifier == nil {
		return analysis
	}

	classification, err := a.classifier.Classify(ctx, text)
	if err != nil {
		a.logger.Warn("classifier failed, keeping rule-based analysis", "err", err)
		return analysis
	}

	if severity, err := types.ParseSeverity(classification.Severity); err == nil {
		analysis.Severity = severity
	}
	analysis.Sentiment = clamp(classification.Sentiment, -1, 1)
	analysis.Confidence = clamp(classification.Confidence, 0, 1)
	if !classification.Relevant {
		analysis.Relevance = 0
	}
	analysis.Classified = true

	return analysis
}

// Sentiment scores text from -1 to 1. Lovebug posts lean negative, so the
// positive side is capped low.
func Sentiment(text string) float64 {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}

	positive := countContained(text, positiveWords)
	negative := countContained(text, negativeWords)

	switch {
	case negative > positive:
		return -math.Min(0.8, float64(negative)/float64(words)*5)
	case positive > negative:
		return math.Min(0.3, float64(positive)/float64(words)*3)
	}
	return -0.2
}

func Intensity(text string) string {
	switch {
	case countContained(text, highIntensityWords) > 0:
		return IntensityHigh
	case countContained(text, mediumIntensityWords) > 0:
		return IntensityMedium
	case countContained(text, lowIntensityWords) > 0:
		return IntensityLow
	}
	return IntensityMedium
}

func Confidence(text string) float64 {
	confidence := 0.5
	confidence += float64(countContained(text, confidenceKeywords)) * 0.2

	for _, pattern := range mentionPatterns {
		if pattern.MatchString(text) {
			confidence += 0.2
			break
		}
	}

	if countContained(text, timeWords) > 0 {
		confidence += 0.1
	}

	return math.Min(1, confidence)
}

func Relevance(text string) float64 {
	relevance := float64(countContained(text, directKeywords))*0.4 +
		float64(countContained(text, indirectKeywords))*0.2 +
		float64(countContained(text, contextKeywords))*0.1

	return math.Min(1, relevance)
}

func Severity(text string) types.Severity {
	switch {
	case countContained(text, criticalSeverityWords) > 0:
		return types.SeverityCritical
	case countContained(text, highSeverityWords) > 0:
		return types.SeverityHigh
	case countContained(text, mediumSeverityWords) > 0:
		return types.SeverityMedium
	}
	return types.SeverityLow
}

// Keywords returns the crawl keywords and place-like tokens in text, sorted
// and de-duplicated.
func Keywords(text string) []string {
	keywords := []string{}

	for _, keyword := range LovebugKeywords {
		if strings.Contains(text, keyword) {
			keywords = append(keywords, keyword)
		}
	}

	for _, pattern := range keywordPatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			keywords = append(keywords, match[1])
		}
	}

	slices.Sort(keywords)
	return slices.Compact(keywords)
}

func countContained(text string, words []string) int {
	count := 0
	for _, word := range words {
		if strings.Contains(text, word) {
			count++
		}
	}
	return count
}

func clamp(value, low, high float64) float64 {
	return math.Max(low, math.Min(high, value))
}
