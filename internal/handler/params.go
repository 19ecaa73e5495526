package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"medtrack/internal/auth"
	apperrors "medtrack/internal/errors"
	"medtrack/internal/service"
)

// The web client sends numeric form fields as strings and empty inputs as
// "". The types below accept a JSON number, a numeric string, or
// ""/null meaning absent.

func unquote(b []byte) (string, bool, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return "", false, nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", false, err
		}
		s = strings.TrimSpace(s)
		return s, s != "", nil
	}
	return string(b), true, nil
}

// flexUint is an optional unsigned id.
type flexUint struct {
	Value uint
	Set   bool
}

func (f *flexUint) UnmarshalJSON(b []byte) error {
	s, ok, err := unquote(b)
	if err != nil || !ok {
		return err
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", s)
	}
	f.Value, f.Set = uint(n), true
	return nil
}

// flexInt is an optional integer count.
type flexInt struct {
	Value int
	Set   bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s, ok, err := unquote(b)
	if err != nil || !ok {
		return err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer %q", s)
	}
	f.Value, f.Set = n, true
	return nil
}

// Ptr returns nil when the value was absent.
func (f flexInt) Ptr() *int {
	if !f.Set {
		return nil
	}
	v := f.Value
	return &v
}

// optionalDecimal is an optional exact decimal.
type optionalDecimal struct {
	decimal.NullDecimal
}

func (d *optionalDecimal) UnmarshalJSON(b []byte) error {
	s, ok, err := unquote(b)
	if err != nil || !ok {
		return err
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	d.NullDecimal = decimal.NewNullDecimal(v)
	return nil
}

// optionalTime is an optional timestamp. Values without a zone are read in
// server local time.
type optionalTime struct {
	Value *time.Time
}

var localTimeLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05"}

func (t *optionalTime) UnmarshalJSON(b []byte) error {
	s, ok, err := unquote(b)
	if err != nil || !ok {
		return err
	}
	if v, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Value = &v
		return nil
	}
	for _, layout := range localTimeLayouts {
		if v, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			t.Value = &v
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

// parseDate parses a YYYY-MM-DD calendar date.
func parseDate(field, s string) (time.Time, error) {
	d, err := time.Parse(service.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, apperrors.BadRequest(field + " must be a YYYY-MM-DD date")
	}
	return d, nil
}

// optionalDateParam reads a YYYY-MM-DD query parameter; empty means absent.
func optionalDateParam(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	d, err := parseDate(name, raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// optionalIDParam reads an id query parameter; empty means absent.
func optionalIDParam(c echo.Context, name string) (*uint, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, apperrors.BadRequest(name + " must be a number")
	}
	id := uint(n)
	return &id, nil
}

// eventQuery reads start_date, end_date and the definition filter.
func eventQuery(c echo.Context, definitionParam string) (service.EventQuery, error) {
	var q service.EventQuery
	var err error
	if q.Start, err = optionalDateParam(c, "start_date"); err != nil {
		return q, err
	}
	if q.End, err = optionalDateParam(c, "end_date"); err != nil {
		return q, err
	}
	if q.DefinitionID, err = optionalIDParam(c, definitionParam); err != nil {
		return q, err
	}
	return q, nil
}

// pathID reads the :id path parameter. A malformed id cannot match any row.
func pathID(c echo.Context, notFound error) (uint, error) {
	n, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || n == 0 {
		return 0, notFound
	}
	return uint(n), nil
}

// bind decodes the JSON body.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.BadRequest("Invalid request body")
	}
	return nil
}

// currentUser returns the authenticated user's id.
func currentUser(c echo.Context) (uint, error) {
	p, ok := auth.UserFrom(c)
	if !ok {
		return 0, apperrors.NewHTTPError(http.StatusUnauthorized, "Access token required")
	}
	return p.ID, nil
}
