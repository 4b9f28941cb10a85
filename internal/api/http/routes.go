package httpapi

import (
	"bytes"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/weather-gateway/internal/export"
	"github.com/i474232898/weather-gateway/internal/media"
	"github.com/i474232898/weather-gateway/internal/weather"
)

// Deps are the services the HTTP handlers call.
type Deps struct {
	Weather    *weather.Service
	Videos     *media.VideoService
	Maps       *media.MapService
	Logger     *zap.Logger
	BackendURL string
}

type handlers struct {
	Deps
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	h := &handlers{Deps: deps}

	api := app.Group("/api")

	api.Get("/", h.index)

	api.Post("/weather", h.fetchWeather)

	api.Get("/queries", h.listQueries)
	api.Get("/queries/:id", h.getQuery)
	api.Put("/queries/:id", h.updateQuery)
	api.Delete("/queries/:id", h.deleteQuery)

	api.Get("/export/csv", h.exportCSV)
	api.Get("/export/json", h.exportJSON)

	api.Get("/youtube/:location", h.videos)
	api.Get("/maps/:location", h.maps)
}

func (h *handlers) index(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service":    "weather-gateway",
		"backendUrl": h.BackendURL,
		"endpoints": []string{
			"POST /api/weather",
			"GET /api/queries",
			"GET /api/queries/:id",
			"PUT /api/queries/:id",
			"DELETE /api/queries/:id",
			"GET /api/export/csv",
			"GET /api/export/json",
			"GET /api/youtube/:location",
			"GET /api/maps/:location",
		},
	})
}

func (h *handlers) fetchWeather(c *fiber.Ctx) error {
	var body weatherBody
	if err := parseBody(c, &body); err != nil {
		return err
	}

	rec, err := h.Weather.FetchAndStore(c.UserContext(), body.toRequest())
	if err != nil {
		return toHTTPError(h.Logger, err, "Failed to fetch weather data")
	}
	return c.JSON(rec)
}

func (h *handlers) listQueries(c *fiber.Ctx) error {
	queries, err := h.Weather.ListQueries(c.UserContext())
	if err != nil {
		return toHTTPError(h.Logger, err, "Failed to fetch queries")
	}
	if queries == nil {
		queries = []weather.WeatherQuery{}
	}
	return c.JSON(queries)
}

func (h *handlers) getQuery(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	q, err := h.Weather.GetQuery(c.UserContext(), id)
	if err != nil {
		return toHTTPError(h.Logger, err, "Failed to fetch query")
	}
	return c.JSON(q)
}

func (h *handlers) updateQuery(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var body weather.UpdateRequest
	if err := parseBody(c, &body); err != nil {
		return err
	}

	rec, err := h.Weather.UpdateQuery(c.UserContext(), id, body)
	if err != nil {
		return toHTTPError(h.Logger, err, "Failed to update query")
	}

	return c.JSON(fiber.Map{
		"message":     "Query updated successfully",
		"weatherData": rec,
	})
}

func (h *handlers) deleteQuery(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.Weather.DeleteQuery(c.UserContext(), id); err != nil {
		return toHTTPError(h.Logger, err, "Failed to delete query")
	}
	return c.JSON(fiber.Map{"message": "Query deleted successfully"})
}

func (h *handlers) exportCSV(c *fiber.Ctx) error {
	queries, err := h.Weather.ListQueries(c.UserContext())
	if err != nil {
		return toHTTPError(h.Logger, err, "Failed to export data")
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, queries); err != nil {
		return toHTTPError(h.Logger, err, "Failed to export data")
	}

	c.Attachment(export.CSVFilename)
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Send(buf.Bytes())
}

func (h *handlers) exportJSON(c *fiber.Ctx) error {
	queries, err := h.Weather.ListQueries(c.UserContext())
	if err != nil {
		return toHTTPError(h.Logger, err, "Failed to export data")
	}

	var buf bytes.Buffer
	if err := export.WriteJSON(&buf, queries); err != nil {
		return toHTTPError(h.Logger, err, "Failed to export data")
	}

	c.Attachment(export.JSONFilename)
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(buf.Bytes())
}

func (h *handlers) videos(c *fiber.Ctx) error {
	location, err := locationParam(c)
	if err != nil {
		return err
	}
	return c.JSON(h.Videos.Search(c.UserContext(), location))
}

func (h *handlers) maps(c *fiber.Ctx) error {
	location, err := locationParam(c)
	if err != nil {
		return err
	}
	return c.JSON(h.Maps.Lookup(c.UserContext(), location))
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid query id")
	}
	// Ids start at 1, so anything lower can only be an unknown query.
	if id <= 0 {
		return 0, fiber.NewError(fiber.StatusNotFound, (&weather.NotFoundError{ID: id}).Error())
	}
	return id, nil
}

func locationParam(c *fiber.Ctx) (string, error) {
	raw := c.Params("location")
	location, err := url.PathUnescape(raw)
	if err != nil {
		location = raw
	}
	if location == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "Location is required")
	}
	return location, nil
}
