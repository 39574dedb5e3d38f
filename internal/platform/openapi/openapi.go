// Package openapi builds an OpenAPI 3.0 document from the routes registered
// on an echo server and the Go types behind them.
package openapi

import (
	"net/http"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

var (
	timeType    = reflect.TypeOf(time.Time{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

// Resource describes one collection under the API prefix.
type Resource struct {
	// Path is the collection segment, e.g. "patients".
	Path  string
	Tag   string
	Model interface{}
	// Input is the create body. Patch is the partial update body.
	Input interface{}
	Patch interface{}
	// Detail is returned by GET /<path>/:id when it differs from Model.
	Detail interface{}
}

type queryParam struct {
	name, typ, description string
}

// Generator assembles the document on demand so routes added after it is
// created are included.
type Generator struct {
	title     string
	version   string
	baseURL   string
	prefix    string
	routes    func() []*echo.Route
	resources map[string]Resource
	overrides map[string]interface{}
	queries   map[string][]queryParam
}

// NewGenerator creates a generator for routes under prefix (e.g. "/api").
func NewGenerator(title, version, baseURL, prefix string, routes func() []*echo.Route) *Generator {
	return &Generator{
		title:     title,
		version:   version,
		baseURL:   baseURL,
		prefix:    strings.TrimSuffix(prefix, "/"),
		routes:    routes,
		resources: make(map[string]Resource),
		overrides: make(map[string]interface{}),
		queries:   make(map[string][]queryParam),
	}
}

// AddResource registers a collection's types.
func (g *Generator) AddResource(r Resource) {
	g.resources[r.Path] = r
}

// Respond sets the response model of a single operation. path uses echo
// syntax and includes the prefix.
func (g *Generator) Respond(method, path string, model interface{}) {
	g.overrides[method+" "+path] = model
}

// Query documents a query parameter of an operation.
func (g *Generator) Query(method, path, name, typ, description string) {
	key := method + " " + path
	g.queries[key] = append(g.queries[key], queryParam{name, typ, description})
}

// GenerateSpec produces the OpenAPI document as a map.
func (g *Generator) GenerateSpec() map[string]interface{} {
	schemas := make(map[string]interface{})
	paths := make(map[string]map[string]interface{})

	routes := g.routes()
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})

	for _, rt := range routes {
		if !documented(rt, g.prefix) {
			continue
		}
		op := g.operation(rt, schemas)
		p := openAPIPath(rt.Path)
		if paths[p] == nil {
			paths[p] = make(map[string]interface{})
		}
		paths[p][strings.ToLower(rt.Method)] = op
	}

	schemas["Error"] = map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"message": map[string]string{"type": "string"},
		},
	}

	return map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":   g.title,
			"version": g.version,
		},
		"servers": []map[string]string{
			{"url": g.baseURL},
		},
		"paths": paths,
		"components": map[string]interface{}{
			"schemas": schemas,
		},
	}
}

// documented skips the document's own route, echo's internal not-found
// routes and wildcard paths.
func documented(rt *echo.Route, prefix string) bool {
	switch rt.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return false
	}
	if !strings.HasPrefix(rt.Path, prefix+"/") || strings.Contains(rt.Path, "*") {
		return false
	}
	return rt.Path != prefix+"/openapi.json"
}

func (g *Generator) operation(rt *echo.Route, schemas map[string]interface{}) map[string]interface{} {
	segs := strings.Split(strings.TrimPrefix(rt.Path, g.prefix+"/"), "/")
	last := segs[len(segs)-1]
	onItem := strings.HasPrefix(last, ":")

	// /visits/:visitId/payments lists payments; /patients/:id is a patient.
	res, ok := g.resources[segs[0]]
	if !onItem {
		res, ok = g.resources[last]
	}
	tag := segs[0]
	if ok && res.Tag != "" {
		tag = res.Tag
	}

	op := map[string]interface{}{
		"summary":     summary(rt.Method, rt.Path),
		"operationId": operationID(rt.Method, segs),
		"tags":        []string{tag},
	}

	var params []map[string]interface{}
	for _, s := range segs {
		if strings.HasPrefix(s, ":") {
			params = append(params, pathParam(s[1:]))
		}
	}
	for _, q := range g.queries[rt.Method+" "+rt.Path] {
		params = append(params, map[string]interface{}{
			"name":        q.name,
			"in":          "query",
			"description": q.description,
			"schema":      map[string]string{"type": q.typ},
		})
	}
	if len(params) > 0 {
		op["parameters"] = params
	}

	responses := map[string]interface{}{
		"400": errorResponse("Invalid request"),
		"500": errorResponse("Internal error"),
	}
	if onItem {
		responses["404"] = errorResponse("Not found")
	}

	var body, result interface{}
	status, many := "200", false
	switch rt.Method {
	case http.MethodGet:
		result = res.Model
		if onItem && res.Detail != nil {
			result = res.Detail
		}
		many = !onItem
	case http.MethodPost:
		body, result, status = res.Input, res.Model, "201"
	case http.MethodPatch, http.MethodPut:
		body, result = res.Patch, res.Model
	case http.MethodDelete:
		status = "204"
	}
	if model, ok := g.overrides[rt.Method+" "+rt.Path]; ok {
		result, many = model, false
	}

	if body != nil {
		op["requestBody"] = map[string]interface{}{
			"required": true,
			"content": map[string]interface{}{
				echo.MIMEApplicationJSON: map[string]interface{}{"schema": schemaFor(reflect.TypeOf(body), schemas)},
			},
		}
	}

	ok200 := map[string]interface{}{"description": http.StatusText(statusCode(status))}
	if result != nil {
		s := schemaFor(reflect.TypeOf(result), schemas)
		if many {
			s = map[string]interface{}{"type": "array", "items": s}
		}
		ok200["content"] = map[string]interface{}{
			echo.MIMEApplicationJSON: map[string]interface{}{"schema": s},
		}
	}
	responses[status] = ok200
	op["responses"] = responses
	return op
}

// schemaFor returns an inline schema or a $ref, registering struct types in
// schemas as it goes.
func schemaFor(t reflect.Type, schemas map[string]interface{}) map[string]interface{} {
	nullable := false
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
		nullable = true
	}

	var s map[string]interface{}
	switch {
	case t == timeType:
		s = map[string]interface{}{"type": "string", "format": "date-time"}
	case t == decimalType:
		s = map[string]interface{}{"type": "string", "format": "decimal"}
	case t.Kind() == reflect.Struct:
		name := t.Name()
		if _, seen := schemas[name]; !seen {
			schemas[name] = nil // breaks cycles
			schemas[name] = objectSchema(t, schemas)
		}
		ref := map[string]interface{}{"$ref": "#/components/schemas/" + name}
		if nullable {
			return map[string]interface{}{"allOf": []interface{}{ref}, "nullable": true}
		}
		return ref
	case t.Kind() == reflect.Slice || t.Kind() == reflect.Array:
		s = map[string]interface{}{"type": "array", "items": schemaFor(t.Elem(), schemas)}
	case t.Kind() == reflect.Map:
		s = map[string]interface{}{"type": "object", "additionalProperties": schemaFor(t.Elem(), schemas)}
	case t.Kind() == reflect.String:
		s = map[string]interface{}{"type": "string"}
	case t.Kind() == reflect.Bool:
		s = map[string]interface{}{"type": "boolean"}
	case t.Kind() >= reflect.Int && t.Kind() <= reflect.Uint64:
		s = map[string]interface{}{"type": "integer"}
	case t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64:
		s = map[string]interface{}{"type": "number"}
	default:
		s = map[string]interface{}{}
	}
	if nullable {
		s["nullable"] = true
	}
	return s
}

func objectSchema(t reflect.Type, schemas map[string]interface{}) map[string]interface{} {
	props := make(map[string]interface{})
	var required []string
	collectFields(t, props, &required, schemas)

	s := map[string]interface{}{"type": "object", "properties": props}
	if len(required) > 0 {
		sort.Strings(required)
		s["required"] = required
	}
	return s
}

// collectFields flattens embedded structs the way encoding/json does.
func collectFields(t reflect.Type, props map[string]interface{}, required *[]string, schemas map[string]interface{}) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		if f.Anonymous && tag == "" && f.Type.Kind() == reflect.Struct {
			collectFields(f.Type, props, required, schemas)
			continue
		}
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		props[name] = schemaFor(f.Type, schemas)
		for _, rule := range strings.Split(f.Tag.Get("validate"), ",") {
			if rule == "required" {
				*required = append(*required, name)
			}
		}
	}
}

func pathParam(name string) map[string]interface{} {
	typ := "string"
	if name == "id" || strings.HasSuffix(name, "Id") {
		typ = "integer"
	}
	return map[string]interface{}{
		"name":     name,
		"in":       "path",
		"required": true,
		"schema":   map[string]string{"type": typ},
	}
}

func errorResponse(description string) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content": map[string]interface{}{
			echo.MIMEApplicationJSON: map[string]interface{}{
				"schema": map[string]string{"$ref": "#/components/schemas/Error"},
			},
		},
	}
}

// openAPIPath rewrites echo's :param segments as {param}.
func openAPIPath(path string) string {
	segs := strings.Split(path, "/")
	for i, s := range segs {
		if strings.HasPrefix(s, ":") {
			segs[i] = "{" + s[1:] + "}"
		}
	}
	return strings.Join(segs, "/")
}

func summary(method, path string) string {
	return method + " " + openAPIPath(path)
}

func operationID(method string, segs []string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	for _, s := range segs {
		s = strings.TrimPrefix(s, ":")
		for _, word := range strings.Split(s, "-") {
			if word == "" {
				continue
			}
			b.WriteString(strings.ToUpper(word[:1]) + word[1:])
		}
	}
	return b.String()
}

func statusCode(s string) int {
	switch s {
	case "201":
		return http.StatusCreated
	case "204":
		return http.StatusNoContent
	}
	return http.StatusOK
}

// RegisterRoutes serves the document at /openapi.json.
func (g *Generator) RegisterRoutes(apiGroup *echo.Group) {
	apiGroup.GET("/openapi.json", func(c echo.Context) error {
		return c.JSON(http.StatusOK, g.GenerateSpec())
	})
}
