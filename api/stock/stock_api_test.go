package stock

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"shopbot.GO/api"
	"shopbot.GO/catalog"
	"shopbot.GO/config"
	"shopbot.GO/stock"
)

const (
	testUser = "admin"
	testPass = "secret"
)

const apiTestDoc = `{
	"categories": [
		{"key": "snacks", "title": "Снеки", "items": [
			{"name": "Bar", "price": 2.5},
			{"name": "Chips", "price": 1.2}
		]}
	]
}`

func stockTestDeps(t *testing.T) *api.Deps {
	t.Helper()
	tree, err := catalog.Parse(strings.NewReader(apiTestDoc))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	return &api.Deps{Tree: tree, Overlay: stock.Open(nil)}
}

func stockTestServer(t *testing.T, deps *api.Deps) *echo.Echo {
	t.Helper()
	e := echo.New()
	apiGroup := e.Group("/api")
	apiGroup.Use(middleware.BasicAuth(func(user, pass string, c echo.Context) (bool, error) {
		return user == testUser && pass == testPass, nil
	}))
	RegisterStockRoutes(apiGroup, deps)
	return e
}

// stockSkipperServer mounts auth the way main does: on the /api group,
// with the configured public paths skipped.
func stockSkipperServer(t *testing.T, deps *api.Deps) *echo.Echo {
	t.Helper()
	skipPaths := config.GetAuthSkipperPaths()
	e := echo.New()
	apiGroup := e.Group("/api")
	apiGroup.Use(middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Validator: func(user, pass string, c echo.Context) (bool, error) {
			return user == testUser && pass == testPass, nil
		},
		Skipper: func(c echo.Context) bool {
			for _, skip := range skipPaths {
				if c.Path() == skip {
					return true
				}
			}
			return false
		},
	}))
	RegisterStockRoutes(apiGroup, deps)
	return e
}

func basicAuth(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func doSetRequest(e *echo.Echo, body interface{}, auth string) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/stock/set", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestStockAPI_NoAuth_Returns401(t *testing.T) {
	e := stockTestServer(t, stockTestDeps(t))

	rec := doSetRequest(e, map[string]interface{}{"address_key": "ci:snacks:0", "available": false}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestStockAPI_SkipperExposesReadOnlyList(t *testing.T) {
	e := stockSkipperServer(t, stockTestDeps(t))

	// the list is on the public path list, readable without credentials
	req := httptest.NewRequest(http.MethodGet, "/api/stock", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("unauthenticated list status = %d, want 200", rec.Code)
	}

	// writes never skip auth
	rec = doSetRequest(e, map[string]interface{}{"address_key": "ci:snacks:0", "available": false}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated set status = %d, want 401", rec.Code)
	}
}

func TestStockAPI_List(t *testing.T) {
	deps := stockTestDeps(t)
	deps.Overlay.Set("ci:snacks:0", false, nil)
	e := stockTestServer(t, deps)

	req := httptest.NewRequest(http.MethodGet, "/api/stock", nil)
	req.Header.Set("Authorization", basicAuth(testUser, testPass))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-Duration-ms") == "" {
		t.Error("missing X-Request-Duration-ms header")
	}

	var resp struct {
		Count int `json:"count"`
		Items []struct {
			AddressKey string `json:"address_key"`
			Name       string `json:"name"`
			Price      string `json:"price"`
			Available  bool   `json:"available"`
		} `json:"items"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("count = %d, want 2", resp.Count)
	}
	for _, it := range resp.Items {
		switch it.AddressKey {
		case "ci:snacks:0":
			if it.Available {
				t.Error("ci:snacks:0 reported available")
			}
			if it.Name != "Bar" || it.Price != "2.50" {
				t.Errorf("item = %+v", it)
			}
		case "ci:snacks:1":
			if !it.Available {
				t.Error("ci:snacks:1 reported unavailable")
			}
		default:
			t.Errorf("unexpected address key %s", it.AddressKey)
		}
	}
}

func TestStockAPI_Set(t *testing.T) {
	deps := stockTestDeps(t)
	e := stockTestServer(t, deps)

	body := map[string]interface{}{"address_key": "ci:snacks:0", "available": false, "eta": "2026-01-20"}
	rec := doSetRequest(e, body, basicAuth(testUser, testPass))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	entry := deps.Overlay.Get("ci:snacks:0")
	if entry.Available {
		t.Error("leaf still available after set")
	}
	if entry.ETA == nil || entry.ETA.Format("2006-01-02") != "2026-01-20" {
		t.Errorf("eta = %v", entry.ETA)
	}
}

func TestStockAPI_Set_MalformedKey_Returns400(t *testing.T) {
	e := stockTestServer(t, stockTestDeps(t))

	rec := doSetRequest(e, map[string]interface{}{"address_key": "not-a-key", "available": false}, basicAuth(testUser, testPass))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestStockAPI_Set_UnresolvedKey_Returns404(t *testing.T) {
	e := stockTestServer(t, stockTestDeps(t))

	rec := doSetRequest(e, map[string]interface{}{"address_key": "ci:snacks:99", "available": false}, basicAuth(testUser, testPass))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestStockAPI_Set_BadETA_Returns400(t *testing.T) {
	deps := stockTestDeps(t)
	e := stockTestServer(t, deps)

	body := map[string]interface{}{"address_key": "ci:snacks:0", "available": false, "eta": "next week"}
	rec := doSetRequest(e, body, basicAuth(testUser, testPass))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !deps.Overlay.Get("ci:snacks:0").Available {
		t.Error("overlay written on rejected eta")
	}
}
