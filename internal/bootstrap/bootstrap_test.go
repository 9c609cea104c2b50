package bootstrap

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/ferretcode/lovebug/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type memoryStore struct {
	reports   []types.Report
	deleteErr error
}

func (m *memoryStore) DeleteAll(ctx context.Context) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	n := int64(len(m.reports))
	m.reports = nil
	return n, nil
}

func (m *memoryStore) InsertReports(ctx context.Context, reports []types.Report) (int, error) {
	m.reports = append(m.reports, reports...)
	return len(reports), nil
}

func newTestSeeder(store ReportStore) *Seeder {
	s := NewSeeder(store, discardLogger)
	s.rand = rand.New(rand.NewPCG(1, 2))
	s.now = func() time.Time { return time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestGenerate(t *testing.T) {
	s := newTestSeeder(&memoryStore{})
	now := s.now()

	reports := s.Generate(200)
	require.Len(t, reports, 200)

	ids := make(map[string]bool)
	for _, report := range reports {
		assert.False(t, ids[report.TweetID], "duplicate tweet id")
		ids[report.TweetID] = true

		require.NotNil(t, report.Location)
		assert.InDelta(t, 37.53, report.Location.Latitude, 0.1)
		assert.InDelta(t, 127.0, report.Location.Longitude, 0.15)
		assert.Equal(t, "서울특별시", report.Location.City)

		age := now.Sub(report.CreatedAt)
		assert.GreaterOrEqual(t, age, time.Hour)
		assert.LessOrEqual(t, age, 72*time.Hour)

		assert.GreaterOrEqual(t, report.Sentiment, -1.0)
		assert.LessOrEqual(t, report.Sentiment, 1.0)
		assert.Len(t, report.Keywords, 5)
		assert.Contains(t, report.Keywords, "러브버그")
	}
}

func TestSeed_Replace(t *testing.T) {
	store := &memoryStore{reports: make([]types.Report, 3)}
	s := newTestSeeder(store)

	result, err := s.Seed(context.Background(), 20, false)
	require.NoError(t, err)

	assert.Equal(t, int64(3), result.Deleted)
	assert.Equal(t, 20, result.Inserted)
	assert.Len(t, store.reports, 20)

	districtTotal, severityTotal := 0, 0
	for _, n := range result.ByDistrict {
		districtTotal += n
	}
	for _, n := range result.BySeverity {
		severityTotal += n
	}
	assert.Equal(t, 20, districtTotal)
	assert.Equal(t, 20, severityTotal)
}

func TestSeed_Keep(t *testing.T) {
	store := &memoryStore{reports: make([]types.Report, 3)}

	result, err := newTestSeeder(store).Seed(context.Background(), 5, true)
	require.NoError(t, err)
	assert.Zero(t, result.Deleted)
	assert.Len(t, store.reports, 8)
}

func TestSeed_DeleteError(t *testing.T) {
	store := &memoryStore{deleteErr: errors.New("mongo down")}

	_, err := newTestSeeder(store).Seed(context.Background(), 5, false)
	assert.ErrorContains(t, err, "mongo down")
	assert.Empty(t, store.reports)
}
