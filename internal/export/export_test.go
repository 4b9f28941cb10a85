package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-gateway/internal/weather"
)

func sampleQueries() []weather.WeatherQuery {
	from, to := "2024-05-01", "2024-05-03"
	return []weather.WeatherQuery{
		{
			ID:       2,
			Location: "Paris, FR",
			DateFrom: &from,
			DateTo:   &to,
			WeatherData: &weather.Record{Current: weather.Payload{
				"main":    map[string]any{"temp": 21.5},
				"weather": []any{map[string]any{"description": "clear sky"}},
			}},
			CreatedAt: time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC),
		},
		{
			ID:        1,
			Location:  "48.85,2.35",
			CreatedAt: time.Date(2024, 5, 31, 8, 0, 0, 0, time.UTC),
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleQueries()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"ID", "Location", "Date From", "Date To", "Temperature(°C)", "Weather", "Created At"}, rows[0])
	assert.Equal(t, []string{"2", "Paris, FR", "2024-05-01", "2024-05-03", "21.5", "clear sky", "2024-06-01T10:30:00Z"}, rows[1])
	assert.Equal(t, []string{"1", "48.85,2.35", "", "", "", "", "2024-05-31T08:00:00Z"}, rows[2])
}

func TestWriteCSVHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleQueries()))
	assert.Contains(t, buf.String(), "\n  {")

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Paris, FR", decoded[0]["location"])
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}
