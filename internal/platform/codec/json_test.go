package codec

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newContext(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.JSONSerializer = JSONSerializer{}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSerialize(t *testing.T) {
	c, rec := newContext("")
	if err := c.JSON(http.StatusOK, payload{Name: "knee", Count: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"name":"knee","count":2}` {
		t.Errorf("unexpected body %s", got)
	}
}

func TestDeserialize(t *testing.T) {
	c, _ := newContext(`{"name":"hip","count":3,"extra":true}`)
	var p payload
	if err := c.Bind(&p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "hip" || p.Count != 3 {
		t.Errorf("unexpected payload %+v", p)
	}
}

func TestDeserialize_TypeError(t *testing.T) {
	c, _ := newContext(`{"count":"three"}`)
	var p payload
	err := c.Bind(&p)
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", he.Code)
	}
}

func TestDeserialize_SyntaxError(t *testing.T) {
	c, _ := newContext(`{"name":`)
	var p payload
	if err := c.Bind(&p); err == nil {
		t.Error("expected error for truncated body")
	}
}

func TestDeserialize_TrailingData(t *testing.T) {
	for _, body := range []string{
		`{"name":"hip"} trailing`,
		`{"name":"hip"}{"name":"knee"}`,
		`{"name":"hip"} 7`,
	} {
		c, _ := newContext(body)
		var p payload
		err := c.Bind(&p)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusBadRequest {
			t.Errorf("%q: expected 400 HTTPError, got %v", body, err)
		}
	}
}

func TestDeserialize_TrailingWhitespace(t *testing.T) {
	c, _ := newContext("{\"name\":\"hip\"}\n \t")
	var p payload
	if err := c.Bind(&p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "hip" {
		t.Errorf("unexpected payload %+v", p)
	}
}

type failingBody struct{ err error }

func (f failingBody) Read([]byte) (int, error) { return 0, f.err }

func TestDeserialize_ReaderHTTPErrorPassesThrough(t *testing.T) {
	tooLarge := echo.NewHTTPError(http.StatusRequestEntityTooLarge, "too large")
	c, _ := newContext("")
	c.Request().Body = io.NopCloser(failingBody{tooLarge})
	c.Request().ContentLength = -1

	var p payload
	err := c.Bind(&p)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 HTTPError, got %v", err)
	}
}
