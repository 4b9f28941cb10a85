package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/i474232898/weather-gateway/internal/weather"
)

const (
	CSVFilename  = "weather_queries.csv"
	JSONFilename = "weather_queries.json"
)

var csvHeader = []string{"ID", "Location", "Date From", "Date To", "Temperature(°C)", "Weather", "Created At"}

// WriteCSV renders one line per query. Missing values become empty cells.
func WriteCSV(w io.Writer, queries []weather.WeatherQuery) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, q := range queries {
		temp, desc := summarize(q.WeatherData)
		record := []string{
			strconv.FormatInt(q.ID, 10),
			q.Location,
			deref(q.DateFrom),
			deref(q.DateTo),
			temp,
			desc,
			q.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON renders all queries as an indented JSON array.
func WriteJSON(w io.Writer, queries []weather.WeatherQuery) error {
	if queries == nil {
		queries = []weather.WeatherQuery{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(queries)
}

// summarize extracts current.main.temp and current.weather[0].description.
func summarize(rec *weather.Record) (temp, desc string) {
	if rec == nil || rec.Current == nil {
		return "", ""
	}

	if main, ok := rec.Current["main"].(map[string]any); ok {
		if t, ok := main["temp"].(float64); ok {
			temp = strconv.FormatFloat(t, 'f', -1, 64)
		}
	}

	if items, ok := rec.Current["weather"].([]any); ok && len(items) > 0 {
		if first, ok := items[0].(map[string]any); ok {
			desc, _ = first["description"].(string)
		}
	}
	return temp, desc
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
