package store

import (
	"math"
	"regexp"
	"time"

	"github.com/ferretcode/lovebug/internal/types"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	kmPerDegreeLatitude  = 111.0
	kmPerDegreeLongitude = 111.32
	topKeywordsLimit     = 10
	minHotspotReports    = 2
)

type ReportQuery struct {
	Limit    int
	Offset   int
	Severity types.Severity
	Platform types.Platform
	// Hours restricts results to the last N hours when positive.
	Hours int
}

type SearchQuery struct {
	Keyword   string
	Latitude  *float64
	Longitude *float64
	Radius    *float64
	Severity  types.Severity
	Platform  types.Platform
	Hours     int
	Limit     int
}

func since(now time.Time, hours int) time.Time {
	return now.Add(-time.Duration(hours) * time.Hour)
}

func reportFilter(q ReportQuery, now time.Time) bson.D {
	filter := bson.D{}

	if q.Severity != "" {
		filter = append(filter, bson.E{"severity", string(q.Severity)})
	}

	if q.Platform != "" {
		filter = append(filter, bson.E{"platform", string(q.Platform)})
	}

	if q.Hours > 0 {
		filter = append(filter, bson.E{"created_at", bson.D{{"$gte", since(now, q.Hours)}}})
	}

	return filter
}

func searchFilter(q SearchQuery, now time.Time) bson.D {
	filter := reportFilter(ReportQuery{
		Severity: q.Severity,
		Platform: q.Platform,
		Hours:    q.Hours,
	}, now)

	if q.Keyword != "" {
		filter = append(filter, bson.E{"$or", bson.A{
			bson.D{{"content", bson.D{{"$regex", regexp.QuoteMeta(q.Keyword)}, {"$options", "i"}}}},
			bson.D{{"keywords", bson.D{{"$in", bson.A{q.Keyword}}}}},
		}})
	}

	if q.Latitude != nil && q.Longitude != nil && q.Radius != nil {
		latRange, lngRange := boundingBox(*q.Latitude, *q.Radius)

		filter = append(filter,
			bson.E{"location.latitude", bson.D{
				{"$gte", *q.Latitude - latRange},
				{"$lte", *q.Latitude + latRange},
			}},
			bson.E{"location.longitude", bson.D{
				{"$gte", *q.Longitude - lngRange},
				{"$lte", *q.Longitude + lngRange},
			}},
		)
	}

	return filter
}

// boundingBox returns the half-width in degrees of a square of radiusKm
// around a point at the given latitude.
func boundingBox(latitude, radiusKm float64) (float64, float64) {
	latRange := radiusKm / kmPerDegreeLatitude

	cos := math.Cos(latitude * math.Pi / 180)
	if cos < 0.01 {
		cos = 0.01
	}
	lngRange := radiusKm / (kmPerDegreeLongitude * cos)

	return latRange, lngRange
}

func sinceMatch(from time.Time, extra ...bson.E) bson.D {
	match := bson.D{{"created_at", bson.D{{"$gte", from}}}}
	return append(match, extra...)
}

func severityWeight() bson.D {
	branches := bson.A{}
	for _, severity := range types.Severities {
		branches = append(branches, bson.D{
			{"case", bson.D{{"$eq", bson.A{"$severity", string(severity)}}}},
			{"then", severity.Weight()},
		})
	}

	return bson.D{{"$switch", bson.D{
		{"branches", branches},
		{"default", types.SeverityLow.Weight()},
	}}}
}

func hourlyPipeline(from time.Time, timezone string) bson.A {
	return bson.A{
		bson.D{{"$match", sinceMatch(from)}},
		bson.D{{"$group", bson.D{
			{"_id", bson.D{{"$hour", bson.D{{"date", "$created_at"}, {"timezone", timezone}}}}},
			{"count", bson.D{{"$sum", 1}}},
		}}},
	}
}

func districtCountPipeline(from time.Time) bson.A {
	return bson.A{
		bson.D{{"$match", sinceMatch(from, bson.E{"location.district", bson.D{{"$exists", true}}})}},
		bson.D{{"$group", bson.D{
			{"_id", "$location.district"},
			{"count", bson.D{{"$sum", 1}}},
		}}},
	}
}

func severityPipeline(from time.Time) bson.A {
	return bson.A{
		bson.D{{"$match", sinceMatch(from)}},
		bson.D{{"$group", bson.D{
			{"_id", "$severity"},
			{"count", bson.D{{"$sum", 1}}},
		}}},
	}
}

func keywordsPipeline(from time.Time) bson.A {
	return bson.A{
		bson.D{{"$match", sinceMatch(from)}},
		bson.D{{"$unwind", "$keywords"}},
		bson.D{{"$group", bson.D{
			{"_id", "$keywords"},
			{"count", bson.D{{"$sum", 1}}},
		}}},
		bson.D{{"$sort", bson.D{{"count", -1}, {"_id", 1}}}},
		bson.D{{"$limit", topKeywordsLimit}},
	}
}

func sentimentPipeline(from time.Time) bson.A {
	return bson.A{
		bson.D{{"$match", sinceMatch(from)}},
		bson.D{{"$group", bson.D{
			{"_id", nil},
			{"avg_sentiment", bson.D{{"$avg", "$sentiment"}}},
		}}},
	}
}

func hotspotPipeline(from time.Time, limit int) bson.A {
	return bson.A{
		bson.D{{"$match", sinceMatch(from, bson.E{"location", bson.D{{"$exists", true}}})}},
		bson.D{{"$group", bson.D{
			{"_id", bson.D{
				{"district", "$location.district"},
				{"lat", bson.D{{"$round", bson.A{"$location.latitude", 2}}}},
				{"lng", bson.D{{"$round", bson.A{"$location.longitude", 2}}}},
			}},
			{"count", bson.D{{"$sum", 1}}},
			{"avg_severity", bson.D{{"$avg", severityWeight()}}},
			{"last_activity", bson.D{{"$max", "$created_at"}}},
		}}},
		bson.D{{"$match", bson.D{{"count", bson.D{{"$gte", minHotspotReports}}}}}},
		bson.D{{"$sort", bson.D{{"count", -1}}}},
		bson.D{{"$limit", limit}},
	}
}

func districtsPipeline(from time.Time) bson.A {
	return bson.A{
		bson.D{{"$match", sinceMatch(from, bson.E{"location.district", bson.D{{"$exists", true}}})}},
		bson.D{{"$group", bson.D{
			{"_id", "$location.district"},
			{"count", bson.D{{"$sum", 1}}},
			{"avg_severity", bson.D{{"$avg", severityWeight()}}},
			{"last_activity", bson.D{{"$max", "$created_at"}}},
		}}},
		bson.D{{"$sort", bson.D{{"count", -1}}}},
	}
}
