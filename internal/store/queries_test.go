package store

import (
	"math"
	"testing"
	"time"

	"github.com/ferretcode/lovebug/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var fixedNow = time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)

func lookup(t *testing.T, doc bson.D, key string) any {
	t.Helper()
	for _, e := range doc {
		if e.Key == key {
			return e.Value
		}
	}
	t.Fatalf("key %q not found in %v", key, doc)
	return nil
}

func TestReportFilter_Empty(t *testing.T) {
	assert.Empty(t, reportFilter(ReportQuery{Limit: 100}, fixedNow))
}

func TestReportFilter_AllFields(t *testing.T) {
	filter := reportFilter(ReportQuery{
		Severity: types.SeverityHigh,
		Platform: types.PlatformTwitter,
		Hours:    6,
	}, fixedNow)

	assert.Equal(t, "high", lookup(t, filter, "severity"))
	assert.Equal(t, "twitter", lookup(t, filter, "platform"))

	createdAt := lookup(t, filter, "created_at").(bson.D)
	assert.Equal(t, fixedNow.Add(-6*time.Hour), lookup(t, createdAt, "$gte"))
}

func TestSearchFilter_KeywordIsEscaped(t *testing.T) {
	filter := searchFilter(SearchQuery{Keyword: "러브버그(빨간)*"}, fixedNow)

	or := lookup(t, filter, "$or").(bson.A)
	require.Len(t, or, 2)

	content := lookup(t, or[0].(bson.D), "content").(bson.D)
	assert.Equal(t, `러브버그\(빨간\)\*`, lookup(t, content, "$regex"))
	assert.Equal(t, "i", lookup(t, content, "$options"))

	keywords := lookup(t, or[1].(bson.D), "keywords").(bson.D)
	assert.Equal(t, bson.A{"러브버그(빨간)*"}, lookup(t, keywords, "$in"))
}

func TestSearchFilter_BoundingBox(t *testing.T) {
	lat, lng, radius := 37.5665, 126.9780, 2.0

	filter := searchFilter(SearchQuery{Latitude: &lat, Longitude: &lng, Radius: &radius}, fixedNow)

	latitude := lookup(t, filter, "location.latitude").(bson.D)
	assert.InDelta(t, lat-radius/111, lookup(t, latitude, "$gte"), 1e-9)
	assert.InDelta(t, lat+radius/111, lookup(t, latitude, "$lte"), 1e-9)

	longitude := lookup(t, filter, "location.longitude").(bson.D)
	lngRange := lookup(t, longitude, "$lte").(float64) - lng
	// a degree of longitude is shorter than a degree of latitude in Seoul
	assert.Greater(t, lngRange, radius/111)
	assert.InDelta(t, 0.02267, lngRange, 1e-4)
}

func TestSearchFilter_PartialCoordinatesIgnored(t *testing.T) {
	lat := 37.5
	filter := searchFilter(SearchQuery{Latitude: &lat}, fixedNow)
	assert.Empty(t, filter)
}

func TestBoundingBox_Pole(t *testing.T) {
	_, lngRange := boundingBox(90, 1)
	assert.False(t, math.IsNaN(lngRange))
	assert.Greater(t, lngRange, 0.0)
}

func TestSeverityWeight(t *testing.T) {
	expr := lookup(t, severityWeight(), "$switch").(bson.D)

	branches := lookup(t, expr, "branches").(bson.A)
	require.Len(t, branches, len(types.Severities))

	last := branches[3].(bson.D)
	assert.Equal(t, 4, lookup(t, last, "then"))
	assert.Equal(t, 1, lookup(t, expr, "default"))
}

func TestHotspotPipeline(t *testing.T) {
	pipeline := hotspotPipeline(fixedNow.Add(-24*time.Hour), 10)
	require.Len(t, pipeline, 5)

	keep := lookup(t, pipeline[2].(bson.D), "$match").(bson.D)
	count := lookup(t, keep, "count").(bson.D)
	assert.Equal(t, minHotspotReports, lookup(t, count, "$gte"))

	assert.Equal(t, 10, lookup(t, pipeline[4].(bson.D), "$limit"))
}

func TestHourlyPipeline_UsesTimezone(t *testing.T) {
	pipeline := hourlyPipeline(fixedNow, "Asia/Seoul")

	group := lookup(t, pipeline[1].(bson.D), "$group").(bson.D)
	hour := lookup(t, lookup(t, group, "_id").(bson.D), "$hour").(bson.D)
	assert.Equal(t, "Asia/Seoul", lookup(t, hour, "timezone"))
}

func TestKeywordsPipeline_Limit(t *testing.T) {
	pipeline := keywordsPipeline(fixedNow)
	assert.Equal(t, topKeywordsLimit, lookup(t, pipeline[len(pipeline)-1].(bson.D), "$limit"))
}
