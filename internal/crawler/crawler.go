package crawler

import (
	"context"
	"log/slog"
	"time"

	"github.com/ferretcode/lovebug/internal/analyzer"
	"github.com/ferretcode/lovebug/internal/location"
	"github.com/ferretcode/lovebug/internal/types"
	pkgtypes "github.com/ferretcode/lovebug/pkg/types"
)

type Tweet struct {
	ID        string
	Text      string
	Author    string
	CreatedAt time.Time
	Images    []string
	// Place is the full name of the tagged geo place, if any.
	Place     string
}

type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]Tweet, error)
}

// NewSourceFromConfig returns the Twitter source when credentials exist and
// the sample source otherwise.
func NewSourceFromConfig(ctx context.Context, config *pkgtypes.LovebugConfig, logger *slog.Logger) Source {
	if !config.HasTwitterCredentials() {
		logger.Warn("twitter credentials are not configured, using sample source")
		return NewSampleSource()
	}

	return NewTwitterSource(NewTwitterHTTPClient(ctx, config), TwitterSourceConfig{
		BaseUrl:    config.TwitterApiBaseUrl,
		Keywords:   analyzer.LovebugKeywords,
		MaxResults: config.MaxCrawlResults,
	}, logger)
}

type Crawler struct {
	source    Source
	analyzer  *analyzer.Analyzer
	extractor *location.Extractor
	logger    *slog.Logger
	now       func() time.Time
}

func New(source Source, textAnalyzer *analyzer.Analyzer, extractor *location.Extractor, logger *slog.Logger) *Crawler {
	return &Crawler{
		source:    source,
		analyzer:  textAnalyzer,
		extractor: extractor,
		logger:    logger,
		now:       time.Now,
	}
}

func (c *Crawler) Crawl(ctx context.Context) ([]types.Report, error) {
	tweets, err := c.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]types.Report, 0, len(tweets))
	for _, tweet := range tweets {
		reports = append(reports, c.toReport(ctx, tweet))
	}

	c.logger.Info("crawl produced reports", "source", c.source.Name(), "tweets", len(tweets), "reports", len(reports))

	return reports, nil
}

func (c *Crawler) toReport(ctx context.Context, tweet Tweet) types.Report {
	analysis := c.analyzer.Analyze(ctx, tweet.Text)
	now := c.now().UTC()

	createdAt := tweet.CreatedAt.UTC()
	if tweet.CreatedAt.IsZero() {
		createdAt = now
	}

	images := tweet.Images
	if images == nil {
		images = []string{}
	}

	return types.Report{
		TweetID:    tweet.ID,
		Platform:   types.PlatformTwitter,
		Content:    tweet.Text,
		Location:   c.locate(tweet),
		Severity:   analysis.Severity,
		Confidence: analysis.Confidence,
		Sentiment:  analysis.Sentiment,
		Keywords:   analysis.Keywords,
		ImageUrls:  images,
		Author:     tweet.Author,
		CreatedAt:  createdAt,
		UpdatedAt:  now,
	}
}

// locate prefers a place named in the text and falls back to the tagged
// geo place.
func (c *Crawler) locate(tweet Tweet) *types.Location {
	if loc := c.extractor.Extract(tweet.Text); loc != nil {
		return loc
	}
	if tweet.Place != "" {
		return c.extractor.Extract(tweet.Place)
	}
	return nil
}

type SampleSource struct {
	now func() time.Time
}

func NewSampleSource() *SampleSource {
	return &SampleSource{now: time.Now}
}

func (s *SampleSource) Name() string {
	return "sample"
}

func (s *SampleSource) Fetch(ctx context.Context) ([]Tweet, error) {
	now := s.now()

	return []Tweet{
		{
			ID:        "sample_1",
			Text:      "강남역에서 러브버그 진짜 많네요... 차에 다 붙어있어요 ㅠㅠ",
			Author:    "sample_user1",
			CreatedAt: now.Add(-30 * time.Minute),
			Images:    []string{},
		},
		{
			ID:        "sample_2",
			Text:      "홍대 근처에 붉은등우단털파리 떼가 있어요. 조심하세요!",
			Author:    "sample_user2",
			CreatedAt: now.Add(-15 * time.Minute),
			Images:    []string{},
		},
	}, nil
}
