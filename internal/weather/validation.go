package weather

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// dateLayouts are tried in order when parsing dateFrom/dateTo.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ParseDate parses a caller-supplied date. Date-only values are taken as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// ValidateDateRange checks an optional dateFrom/dateTo pair against now.
// Both empty is valid; the range is descriptive only and never shapes a fetch.
func ValidateDateRange(from, to string, now time.Time) error {
	if from == "" && to == "" {
		return nil
	}
	if from == "" || to == "" {
		return invalid("Both dateFrom and dateTo are required")
	}

	start, err := ParseDate(from)
	if err != nil {
		return invalid("Invalid date format")
	}
	end, err := ParseDate(to)
	if err != nil {
		return invalid("Invalid date format")
	}

	if start.After(end) {
		return invalid("dateFrom must be before or equal to dateTo")
	}
	if end.After(now) {
		return invalid("dateTo cannot be in the future")
	}
	return nil
}

// validateStruct runs struct tags and turns the first failure into a ValidationError.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return invalid("%v", err)
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return invalid("%s is required", fe.Field())
	case "oneof":
		return invalid("%s must be one of: %s", fe.Field(), fe.Param())
	case "max":
		return invalid("%s must be at most %s characters", fe.Field(), fe.Param())
	case "gte", "lte":
		return invalid("%s is out of range", fe.Field())
	default:
		return invalid("%s is invalid", fe.Field())
	}
}

func validateRequest(req Request, now time.Time) error {
	hasCoords := req.Lat != nil && req.Lon != nil
	if req.Location == "" && !hasCoords {
		return invalid("Location or coordinates required")
	}
	if err := validateStruct(req); err != nil {
		return err
	}
	return ValidateDateRange(req.DateFrom, req.DateTo, now)
}

func validateUpdate(req UpdateRequest, now time.Time) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	return ValidateDateRange(req.DateFrom, req.DateTo, now)
}
