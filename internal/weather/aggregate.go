package weather

import (
	"github.com/mitchellh/mapstructure"

	"github.com/i474232898/weather-gateway/internal/common"
)

// buildQuery picks the upstream query shape: coordinates win over zip, zip over name.
func buildQuery(req Request) Query {
	switch {
	case req.Lat != nil && req.Lon != nil:
		return Query{Mode: ModeCoords, Lat: *req.Lat, Lon: *req.Lon}
	case req.Type == "zip":
		return Query{Mode: ModeZip, Text: req.Location}
	default:
		return Query{Mode: ModeName, Text: req.Location}
	}
}

// searchedLocation is the location text, or "lat,lon" when only coordinates were given.
func searchedLocation(req Request) string {
	if req.Location != "" {
		return req.Location
	}
	return common.FormatCoordinates(*req.Lat, *req.Lon)
}

// MergeRecord combines the two provider payloads and augments the current
// conditions with derived display fields.
func MergeRecord(current, forecast Payload, res Resolution) *Record {
	if current == nil {
		current = Payload{}
	}

	var coord struct {
		Lat *float64 `mapstructure:"lat"`
		Lon *float64 `mapstructure:"lon"`
	}
	if raw, ok := current["coord"]; ok && raw != nil {
		if err := mapstructure.Decode(raw, &coord); err == nil && coord.Lat != nil && coord.Lon != nil {
			current["coordinates"] = Coordinates{Lat: *coord.Lat, Lon: *coord.Lon}
		}
	}

	if res.Status == ResolveFound && res.Info != nil {
		current["enhancedLocation"] = res.Info
		current["displayName"] = res.Info.FullName
	}

	if tz, ok := current["timezone"]; ok && tz != nil {
		current["timezoneOffset"] = tz
	}

	return &Record{
		Current:  current,
		Forecast: forecast,
	}
}
