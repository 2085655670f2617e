package geo

import "math"

// EarthRadiusMeters は距離計算に用いる地球半径 (メートル) です。
const EarthRadiusMeters = 6371000.0

// Coordinate は緯度経度 (度) の組です。範囲外の値もそのまま受け付けます。
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// DistanceMeters は 2 点間の大円距離を haversine 公式で求めます。
func DistanceMeters(a, b Coordinate) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	// 丸め誤差で [0,1] を外れると Sqrt(1-h) が NaN になる
	h = math.Min(1, math.Max(0, h))

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMeters * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
