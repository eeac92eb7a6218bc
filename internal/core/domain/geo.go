package domain

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Coordinate is a [latitude, longitude] pair as consumed by map polylines.
type Coordinate [2]float64

// Point returns the coordinate as a GeoPoint.
func (c Coordinate) Point() GeoPoint {
	return GeoPoint{Lat: c[0], Lon: c[1]}
}
