package httpapi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-gateway/internal/weather"
)

// coordinate accepts a JSON number or a numeric string. null and "" leave it unset.
type coordinate struct {
	value float64
	set   bool
}

func (c *coordinate) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}

	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		str = strings.TrimSpace(str)
		if str == "" {
			return nil
		}
		v, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return fmt.Errorf("invalid coordinate %q", str)
		}
		c.value, c.set = v, true
		return nil
	}

	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("invalid coordinate %s", s)
	}
	c.value, c.set = v, true
	return nil
}

func (c coordinate) ptr() *float64 {
	if !c.set {
		return nil
	}
	v := c.value
	return &v
}

// weatherBody is the POST /api/weather payload.
type weatherBody struct {
	Location string     `json:"location"`
	Lat      coordinate `json:"lat"`
	Lon      coordinate `json:"lon"`
	Type     string     `json:"type"`
	DateFrom string     `json:"dateFrom"`
	DateTo   string     `json:"dateTo"`
}

func (b weatherBody) toRequest() weather.Request {
	return weather.Request{
		Location: b.Location,
		Lat:      b.Lat.ptr(),
		Lon:      b.Lon.ptr(),
		Type:     b.Type,
		DateFrom: b.DateFrom,
		DateTo:   b.DateTo,
	}
}

// parseBody decodes a JSON body. An empty body leaves out untouched so that
// validation reports the missing fields.
func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return nil
}
