package location

import (
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"github.com/ferretcode/lovebug/internal/types"
)

const earthRadiusKm = 6371.0

var (
	placePatterns = []*regexp.Regexp{
		regexp.MustCompile(`([가-힣]+역)\s*(?:에서?|근처|앞)`),
		regexp.MustCompile(`([가-힣]+구)\s*(?:에서?|근처|일대)`),
		regexp.MustCompile(`([가-힣]+동)\s*(?:에서?|근처)`),
		regexp.MustCompile(`([가-힣]+로)\s*(?:에서?|근처)`),
		regexp.MustCompile(`([가-힣]+거리)\s*(?:에서?|근처)`),
		regexp.MustCompile(`([가-힣]+공원)\s*(?:에서?|근처)`),
		regexp.MustCompile(`([가-힣]+대학교?)\s*(?:에서?|근처|앞)`),
		regexp.MustCompile(`([가-힣]+시장)\s*(?:에서?|근처)`),
		regexp.MustCompile(`([가-힣]+병원)\s*(?:에서?|근처|앞)`),
	}

	districtPattern = regexp.MustCompile(`([가-힣]+구|[가-힣]+군)`)
	cityPattern     = regexp.MustCompile(`([가-힣]+시|[가-힣]+도|[가-힣]+특별시|[가-힣]+광역시)`)
)

type Extractor struct {
	places []Place
	byName map[string]Place
}

func NewExtractor() *Extractor {
	byName := make(map[string]Place, len(seoulPlaces))
	for _, place := range seoulPlaces {
		byName[place.Name] = place
	}

	return &Extractor{
		places: seoulPlaces,
		byName: byName,
	}
}

// Extract resolves the first place mentioned in text, or returns nil.
func (e *Extractor) Extract(text string) *types.Location {
	for _, place := range e.places {
		if strings.Contains(text, place.Name) {
			return toLocation(place)
		}
	}

	names := PlaceNames(text)
	if len(names) == 0 {
		return nil
	}

	place, ok := e.Coordinates(names[0])
	if !ok {
		return nil
	}

	return toLocation(place)
}

// Coordinates looks a name up in the gazetteer, falling back to a stable
// approximation near Seoul for station, district and neighbourhood names.
func (e *Extractor) Coordinates(name string) (Place, bool) {
	if place, ok := e.byName[name]; ok {
		return place, true
	}

	if !strings.HasSuffix(name, "역") && !strings.HasSuffix(name, "구") && !strings.HasSuffix(name, "동") {
		return Place{}, false
	}

	h := fnv.New32a()
	h.Write([]byte(name))
	offset := float64(h.Sum32()%1000) / 10000

	return Place{
		Name:      name,
		Latitude:  seoulLatitude + offset,
		Longitude: seoulLongitude + offset,
		Address:   "서울특별시 " + name,
	}, true
}

// Nearby lists gazetteer names within radiusKm of the point.
func (e *Extractor) Nearby(latitude, longitude, radiusKm float64) []string {
	var nearby []string
	for _, place := range e.places {
		if Distance(latitude, longitude, place.Latitude, place.Longitude) <= radiusKm {
			nearby = append(nearby, place.Name)
		}
	}
	return nearby
}

// PlaceNames returns the distinct place-like phrases in text, in pattern order.
func PlaceNames(text string) []string {
	seen := make(map[string]bool)
	var names []string

	for _, pattern := range placePatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			if !seen[match[1]] {
				seen[match[1]] = true
				names = append(names, match[1])
			}
		}
	}

	return names
}

func District(address string) string {
	return districtPattern.FindString(address)
}

func City(address string) string {
	return cityPattern.FindString(address)
}

// Distance is the haversine distance in kilometres.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

func toLocation(place Place) *types.Location {
	return &types.Location{
		Latitude:  place.Latitude,
		Longitude: place.Longitude,
		Address:   place.Address,
		District:  District(place.Address),
		City:      City(place.Address),
	}
}
