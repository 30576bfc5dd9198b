package jump

// Event is one accepted vertical jump. Immutable once emitted; the timestamp
// is the interpolated landing instant on the sample clock.
type Event struct {
	HeightM    float64 `json:"height_m"`
	FlightTime float64 `json:"flight_time_s"`
	Quality    float64 `json:"quality"`
	Timestamp  float64 `json:"t"`
}
