package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/ferretcode/lovebug/internal/types"
	"github.com/google/uuid"
)

const (
	DefaultCount = 50
	seedWindow   = 72
	jitter       = 0.01
)

type seedLocation struct {
	District  string
	Latitude  float64
	Longitude float64
}

var seedLocations = []seedLocation{
	{"강남구", 37.5172, 127.0473},
	{"서초구", 37.4837, 127.0324},
	{"송파구", 37.5145, 127.1065},
	{"마포구", 37.5663, 126.9019},
	{"용산구", 37.5384, 126.9654},
	{"중구", 37.5641, 126.9979},
	{"종로구", 37.5735, 126.9788},
	{"성동구", 37.5636, 127.0366},
	{"광진구", 37.5384, 127.0822},
	{"동대문구", 37.5744, 127.0396},
}

var seedMessages = []string{
	"러브버그가 너무 많아요 😱 공원에서 산책하기 힘들어요",
	"오늘 아침에 러브버그 떼를 만났어요. 정말 깜짝 놀랐네요!",
	"러브버그 때문에 창문을 열 수가 없어요 ㅠㅠ",
	"산책로에 러브버그가 엄청 많네요. 조심하세요!",
	"러브버그 시즌이 시작된 것 같아요. 외출 시 주의하세요",
	"공원 벤치에 앉을 수가 없을 정도로 러브버그가 많아요",
	"러브버그 때문에 빨래를 밖에 널기 힘들어요",
	"오늘 러브버그 상황이 심각해요. 마스크 착용 필수!",
	"러브버그가 차에 달라붙어서 운전이 힘들어요",
	"공원에서 러브버그 떼를 피해 다니고 있어요",
}

var seedTags = []string{"공원", "산책", "외출", "주의", "많음"}

type ReportStore interface {
	DeleteAll(ctx context.Context) (int64, error)
	InsertReports(ctx context.Context, reports []types.Report) (int, error)
}

type SeedResult struct {
	Deleted    int64
	Inserted   int
	ByDistrict map[string]int
	BySeverity map[types.Severity]int
}

type Seeder struct {
	store  ReportStore
	logger *slog.Logger
	rand   *rand.Rand
	now    func() time.Time
}

func NewSeeder(store ReportStore, logger *slog.Logger) *Seeder {
	return &Seeder{
		store:  store,
		logger: logger,
		rand:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:    time.Now,
	}
}

// Generate builds count random reports around Seoul districts, created
// within the last 72 hours.
func (s *Seeder) Generate(count int) []types.Report {
	now := s.now().UTC()
	reports := make([]types.Report, 0, count)

	for i := 0; i < count; i++ {
		place := seedLocations[s.rand.IntN(len(seedLocations))]
		createdAt := now.Add(-time.Duration(1+s.rand.IntN(seedWindow)) * time.Hour)

		tags := make([]string, len(seedTags))
		copy(tags, seedTags)
		s.rand.Shuffle(len(tags), func(a, b int) { tags[a], tags[b] = tags[b], tags[a] })

		reports = append(reports, types.Report{
			TweetID:  "seed_" + uuid.NewString(),
			Platform: types.Platforms[s.rand.IntN(len(types.Platforms))],
			Content:  seedMessages[s.rand.IntN(len(seedMessages))],
			Location: &types.Location{
				Latitude:  place.Latitude + s.uniform(-jitter, jitter),
				Longitude: place.Longitude + s.uniform(-jitter, jitter),
				Address:   place.District + " 일대",
				District:  place.District,
				City:      "서울특별시",
			},
			Severity:   types.Severities[s.rand.IntN(len(types.Severities))],
			Confidence: s.uniform(0.3, 1),
			Sentiment:  s.uniform(-1, 1),
			Keywords:   append([]string{"러브버그", "벌레", "곤충"}, tags[:2]...),
			ImageUrls:  []string{},
			Author:     fmt.Sprintf("테스트사용자%d", i+1),
			CreatedAt:  createdAt,
			UpdatedAt:  now,
		})
	}

	return reports
}

func (s *Seeder) uniform(lo, hi float64) float64 {
	return lo + s.rand.Float64()*(hi-lo)
}

// Seed inserts count generated reports, replacing the collection unless
// keep is set.
func (s *Seeder) Seed(ctx context.Context, count int, keep bool) (SeedResult, error) {
	result := SeedResult{
		ByDistrict: make(map[string]int),
		BySeverity: make(map[types.Severity]int),
	}

	if !keep {
		deleted, err := s.store.DeleteAll(ctx)
		if err != nil {
			return result, err
		}
		result.Deleted = deleted
		s.logger.Info("deleted existing reports", "count", deleted)
	}

	reports := s.Generate(count)

	inserted, err := s.store.InsertReports(ctx, reports)
	if err != nil {
		return result, err
	}
	result.Inserted = inserted

	for _, report := range reports {
		result.ByDistrict[report.Location.District]++
		result.BySeverity[report.Severity]++
	}

	s.logger.Info("seeded reports", "count", inserted)

	return result, nil
}
