package location

// Place is a named point the extractor can resolve without a geocoder.
type Place struct {
	Name      string
	Latitude  float64
	Longitude float64
	Address   string
}

// seoulPlaces is searched in order; shorter aliases come before the station
// names that contain them.
var seoulPlaces = []Place{
	{"강남역", 37.4979, 127.0276, "서울특별시 강남구 강남대로 지하396"},
	{"홍대", 37.5516, 126.9226, "서울특별시 마포구 홍익로"},
	{"홍대입구역", 37.5516, 126.9226, "서울특별시 마포구 홍익로"},
	{"신촌", 37.5596, 126.9361, "서울특별시 서대문구 신촌동"},
	{"신촌역", 37.5596, 126.9361, "서울특별시 서대문구 신촌동"},
	{"명동", 37.5636, 126.9826, "서울특별시 중구 명동"},
	{"명동역", 37.5636, 126.9826, "서울특별시 중구 명동"},
	{"종로", 37.5704, 126.9826, "서울특별시 종로구 종로"},
	{"종로3가역", 37.5704, 126.9826, "서울특별시 종로구 종로"},
	{"이태원", 37.5346, 126.9942, "서울특별시 용산구 이태원동"},
	{"이태원역", 37.5346, 126.9942, "서울특별시 용산구 이태원동"},
	{"잠실", 37.5134, 127.1000, "서울특별시 송파구 잠실동"},
	{"잠실역", 37.5134, 127.1000, "서울특별시 송파구 잠실동"},
	{"건대", 37.5404, 127.0696, "서울특별시 광진구 화양동"},
	{"건대입구역", 37.5404, 127.0696, "서울특별시 광진구 화양동"},
	{"노원", 37.6547, 127.0613, "서울특별시 노원구"},
	{"노원역", 37.6547, 127.0613, "서울특별시 노원구"},
	{"수원", 37.2636, 127.0286, "경기도 수원시"},
	{"수원역", 37.2636, 127.0286, "경기도 수원시"},
	{"인천", 37.4563, 126.7052, "인천광역시"},
	{"인천역", 37.4563, 126.7052, "인천광역시"},

	{"강남구", 37.5172, 127.0473, "서울특별시 강남구"},
	{"서초구", 37.4836, 127.0327, "서울특별시 서초구"},
	{"송파구", 37.5145, 127.1065, "서울특별시 송파구"},
	{"강동구", 37.5301, 127.1238, "서울특별시 강동구"},
	{"마포구", 37.5663, 126.9019, "서울특별시 마포구"},
	{"영등포구", 37.5264, 126.8962, "서울특별시 영등포구"},
	{"용산구", 37.5384, 126.9646, "서울특별시 용산구"},
	{"성동구", 37.5634, 127.0367, "서울특별시 성동구"},
	{"광진구", 37.5481, 127.0857, "서울특별시 광진구"},
	{"동대문구", 37.5838, 127.0507, "서울특별시 동대문구"},
	{"중랑구", 37.6066, 127.0925, "서울특별시 중랑구"},
	{"성북구", 37.6066, 127.0181, "서울특별시 성북구"},
	{"강북구", 37.6398, 127.0256, "서울특별시 강북구"},
	{"도봉구", 37.6687, 127.0471, "서울특별시 도봉구"},
	{"노원구", 37.6542, 127.0568, "서울특별시 노원구"},
	{"은평구", 37.6177, 126.9227, "서울특별시 은평구"},
	{"서대문구", 37.5791, 126.9368, "서울특별시 서대문구"},
	{"종로구", 37.5729, 126.9792, "서울특별시 종로구"},
	{"중구", 37.5637, 126.9975, "서울특별시 중구"},
	{"관악구", 37.4784, 126.9516, "서울특별시 관악구"},
	{"동작구", 37.5125, 126.9399, "서울특별시 동작구"},
	{"금천구", 37.4569, 126.8955, "서울특별시 금천구"},
	{"구로구", 37.4955, 126.8875, "서울특별시 구로구"},
	{"양천구", 37.5170, 126.8664, "서울특별시 양천구"},
	{"강서구", 37.5510, 126.8495, "서울특별시 강서구"},
}

// Seoul city hall, the anchor for places that are not in the gazetteer.
const (
	seoulLatitude  = 37.5665
	seoulLongitude = 126.9780
)
