// Package codec provides echo's JSON serializer backed by goccy/go-json.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
)

var errTrailingData = errors.New("trailing data after JSON value")

// JSONSerializer implements echo.JSONSerializer.
type JSONSerializer struct{}

func (JSONSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (JSONSerializer) Deserialize(c echo.Context, i interface{}) error {
	data, err := io.ReadAll(c.Request().Body)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		// Raised by the body reader, e.g. 413 from the size limit.
		return he
	}
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	err = dec.Decode(i)
	if err == nil {
		// One value per body.
		var extra json.RawMessage
		if rest := dec.Decode(&extra); !errors.Is(rest, io.EOF) {
			err = errTrailingData
		}
	}
	var ute *json.UnmarshalTypeError
	var se *json.SyntaxError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errTrailingData):
		return echo.NewHTTPError(http.StatusBadRequest, "syntax error: unexpected data after JSON value").SetInternal(err)
	case errors.As(err, &ute):
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unmarshal type error: expected=%v, got=%v, field=%v", ute.Type, ute.Value, ute.Field)).SetInternal(err)
	case errors.As(err, &se):
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("syntax error: offset=%v, error=%v", se.Offset, se.Error())).SetInternal(err)
	}
	return err
}
