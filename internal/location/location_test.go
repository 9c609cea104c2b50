package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_Gazetteer(t *testing.T) {
	extractor := NewExtractor()

	loc := extractor.Extract("강남역에서 러브버그 진짜 많네요... 차에 다 붙어있어요")
	require.NotNil(t, loc)
	assert.Equal(t, 37.4979, loc.Latitude)
	assert.Equal(t, 127.0276, loc.Longitude)
	assert.Equal(t, "강남구", loc.District)
	assert.Equal(t, "서울특별시", loc.City)

	loc = extractor.Extract("홍대 근처에 붉은등우단털파리 떼가 있어요")
	require.NotNil(t, loc)
	assert.Equal(t, "마포구", loc.District)

	loc = extractor.Extract("수원역 앞에 벌레가 많아요")
	require.NotNil(t, loc)
	assert.Equal(t, "경기도", loc.City)
	assert.Empty(t, loc.District)
}

func TestExtract_PatternApproximation(t *testing.T) {
	extractor := NewExtractor()

	first := extractor.Extract("상도동에서 러브버그 봤어요")
	require.NotNil(t, first)
	assert.GreaterOrEqual(t, first.Latitude, seoulLatitude)
	assert.Less(t, first.Latitude, seoulLatitude+0.1)
	assert.Equal(t, "서울특별시 상도동", first.Address)
	assert.Equal(t, "서울특별시", first.City)

	second := extractor.Extract("상도동에서 러브버그 봤어요")
	assert.Equal(t, first, second)
}

func TestExtract_NoLocation(t *testing.T) {
	extractor := NewExtractor()

	assert.Nil(t, extractor.Extract("러브버그가 너무 많아요"))
	assert.Nil(t, extractor.Extract("한강공원에서 산책 중"))
	assert.Nil(t, extractor.Extract(""))
}

func TestPlaceNames(t *testing.T) {
	names := PlaceNames("신림역 앞이랑 관악구 일대, 그리고 신림역 근처")
	assert.Equal(t, []string{"신림역", "관악구"}, names)

	assert.Empty(t, PlaceNames("아무 장소도 없음"))
}

func TestDistrictAndCity(t *testing.T) {
	assert.Equal(t, "구로구", District("서울특별시 구로구"))
	assert.Equal(t, "서대문구", District("서울특별시 서대문구 신촌동"))
	assert.Equal(t, "", District("인천광역시"))
	assert.Equal(t, "인천광역시", City("인천광역시"))
	assert.Equal(t, "", City(""))
}

func TestNearby(t *testing.T) {
	extractor := NewExtractor()

	nearby := extractor.Nearby(37.4979, 127.0276, 1.0)
	assert.Contains(t, nearby, "강남역")
	assert.NotContains(t, nearby, "인천")

	assert.Empty(t, extractor.Nearby(35.1796, 129.0756, 5))
}

func TestDistance(t *testing.T) {
	assert.InDelta(t, 0, Distance(37.5, 127.0, 37.5, 127.0), 1e-9)
	// one degree of latitude is roughly 111 km
	assert.InDelta(t, 111.2, Distance(37.0, 127.0, 38.0, 127.0), 0.5)
}
