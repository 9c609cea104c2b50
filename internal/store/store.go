package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ferretcode/lovebug/internal/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const reportsCollection = "lovebug_reports"

var ErrReportNotFound = errors.New("report not found")

type UpsertResult struct {
	Upserted int64
	Modified int64
}

type Store struct {
	client   *mongo.Client
	reports  *mongo.Collection
	timezone string
	now      func() time.Time
}

// Connect opens a client; it does not verify the server is reachable.
func Connect(uri, databaseName, timezone string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("error connecting to mongodb: %w", err)
	}

	return New(client, databaseName, timezone), nil
}

func New(client *mongo.Client, databaseName, timezone string) *Store {
	return &Store{
		client:   client,
		reports:  client.Database(databaseName).Collection(reportsCollection),
		timezone: timezone,
		now:      time.Now,
	}
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.reports.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{"tweet_id", 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{Keys: bson.D{{"created_at", -1}}},
		{Keys: bson.D{{"location.district", 1}}},
	})
	if err != nil {
		return fmt.Errorf("error creating indexes: %w", err)
	}

	return nil
}

// UpsertReports writes reports keyed by tweet id. Reports without a tweet
// id are inserted as new documents.
func (s *Store) UpsertReports(ctx context.Context, reports []types.Report) (UpsertResult, error) {
	if len(reports) == 0 {
		return UpsertResult{}, nil
	}

	models := make([]mongo.WriteModel, 0, len(reports))
	for _, report := range reports {
		report.ID = nil

		if report.TweetID == "" {
			models = append(models, mongo.NewInsertOneModel().SetDocument(report))
			continue
		}

		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.D{{"tweet_id", report.TweetID}}).
			SetUpdate(bson.D{{"$set", report}}).
			SetUpsert(true))
	}

	res, err := s.reports.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return UpsertResult{}, fmt.Errorf("error upserting reports: %w", err)
	}

	return UpsertResult{
		Upserted: res.UpsertedCount + res.InsertedCount,
		Modified: res.ModifiedCount,
	}, nil
}

func (s *Store) InsertReports(ctx context.Context, reports []types.Report) (int, error) {
	if len(reports) == 0 {
		return 0, nil
	}

	documents := make([]any, 0, len(reports))
	for _, report := range reports {
		report.ID = nil
		documents = append(documents, report)
	}

	res, err := s.reports.InsertMany(ctx, documents)
	if err != nil {
		return 0, fmt.Errorf("error inserting reports: %w", err)
	}

	return len(res.InsertedIDs), nil
}

func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.reports.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("error deleting reports: %w", err)
	}

	return res.DeletedCount, nil
}

func (s *Store) List(ctx context.Context, q ReportQuery) ([]types.Report, error) {
	opts := options.Find().
		SetSort(bson.D{{"created_at", -1}}).
		SetSkip(int64(q.Offset)).
		SetLimit(int64(q.Limit))

	return s.find(ctx, reportFilter(q, s.now()), opts)
}

func (s *Store) Search(ctx context.Context, q SearchQuery) ([]types.Report, error) {
	opts := options.Find().
		SetSort(bson.D{{"created_at", -1}}).
		SetLimit(int64(q.Limit))

	return s.find(ctx, searchFilter(q, s.now()), opts)
}

func (s *Store) find(ctx context.Context, filter bson.D, opts *options.FindOptionsBuilder) ([]types.Report, error) {
	cursor, err := s.reports.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error querying reports: %w", err)
	}

	reports := []types.Report{}
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("error decoding reports: %w", err)
	}

	return reports, nil
}

func (s *Store) Get(ctx context.Context, id string) (*types.Report, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrReportNotFound
	}

	var report types.Report
	err = s.reports.FindOne(ctx, bson.D{{"_id", objectID}}).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching report: %w", err)
	}

	return &report, nil
}

type countRow[K comparable] struct {
	ID    K   `bson:"_id"`
	Count int `bson:"count"`
}

func aggregate[T any](ctx context.Context, collection *mongo.Collection, pipeline bson.A) ([]T, error) {
	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	var rows []T
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	return rows, nil
}

func (s *Store) Stats(ctx context.Context, hours int) (*types.Stats, error) {
	now := s.now()
	from := since(now, hours)

	total, err := s.reports.CountDocuments(ctx, sinceMatch(from))
	if err != nil {
		return nil, fmt.Errorf("error counting reports: %w", err)
	}

	hourly, err := aggregate[countRow[int]](ctx, s.reports, hourlyPipeline(from, s.timezone))
	if err != nil {
		return nil, fmt.Errorf("error aggregating hourly stats: %w", err)
	}

	districts, err := aggregate[countRow[string]](ctx, s.reports, districtCountPipeline(from))
	if err != nil {
		return nil, fmt.Errorf("error aggregating district stats: %w", err)
	}

	severities, err := aggregate[countRow[types.Severity]](ctx, s.reports, severityPipeline(from))
	if err != nil {
		return nil, fmt.Errorf("error aggregating severity stats: %w", err)
	}

	keywords, err := aggregate[types.KeywordCount](ctx, s.reports, keywordsPipeline(from))
	if err != nil {
		return nil, fmt.Errorf("error aggregating keyword stats: %w", err)
	}

	sentiment, err := aggregate[struct {
		Average *float64 `bson:"avg_sentiment"`
	}](ctx, s.reports, sentimentPipeline(from))
	if err != nil {
		return nil, fmt.Errorf("error aggregating sentiment: %w", err)
	}

	stats := &types.Stats{
		TotalReports:         int(total),
		ReportsByHour:        make(map[int]int, len(hourly)),
		ReportsByDistrict:    make(map[string]int, len(districts)),
		SeverityDistribution: make(map[types.Severity]int, len(severities)),
		TopKeywords:          keywords,
		LastUpdated:          now.UTC(),
	}

	for _, row := range hourly {
		stats.ReportsByHour[row.ID] = row.Count
	}
	for _, row := range districts {
		if row.ID != "" {
			stats.ReportsByDistrict[row.ID] = row.Count
		}
	}
	for _, row := range severities {
		stats.SeverityDistribution[row.ID] = row.Count
	}
	if stats.TopKeywords == nil {
		stats.TopKeywords = []types.KeywordCount{}
	}
	if len(sentiment) > 0 && sentiment[0].Average != nil {
		stats.AverageSentiment = *sentiment[0].Average
	}

	return stats, nil
}

type hotspotRow struct {
	ID struct {
		District  string  `bson:"district"`
		Latitude  float64 `bson:"lat"`
		Longitude float64 `bson:"lng"`
	} `bson:"_id"`
	Count        int       `bson:"count"`
	AvgSeverity  float64   `bson:"avg_severity"`
	LastActivity time.Time `bson:"last_activity"`
}

func (s *Store) Hotspots(ctx context.Context, limit int, radius float64, hours int) ([]types.HotSpot, error) {
	rows, err := aggregate[hotspotRow](ctx, s.reports, hotspotPipeline(since(s.now(), hours), limit))
	if err != nil {
		return nil, fmt.Errorf("error aggregating hotspots: %w", err)
	}

	hotspots := make([]types.HotSpot, 0, len(rows))
	for _, row := range rows {
		hotspots = append(hotspots, types.HotSpot{
			Location: types.Location{
				Latitude:  row.ID.Latitude,
				Longitude: row.ID.Longitude,
				District:  row.ID.District,
			},
			ReportCount:     row.Count,
			AverageSeverity: row.AvgSeverity,
			Radius:          radius,
			LastActivity:    row.LastActivity,
		})
	}

	return hotspots, nil
}

func (s *Store) Districts(ctx context.Context, hours int) ([]types.DistrictSummary, error) {
	districts, err := aggregate[types.DistrictSummary](ctx, s.reports, districtsPipeline(since(s.now(), hours)))
	if err != nil {
		return nil, fmt.Errorf("error aggregating districts: %w", err)
	}

	if districts == nil {
		districts = []types.DistrictSummary{}
	}

	return districts, nil
}
