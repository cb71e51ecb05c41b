package stock

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"shopbot.GO/api"
	"shopbot.GO/catalog"
)

func init() {
	api.RegisterModule(RegisterStockRoutes)
}

// RegisterStockRoutes exposes the stock overlay to back-office tooling:
// the same reads and writes the in-chat admin editor performs, over HTTP.
func RegisterStockRoutes(apiGroup *echo.Group, deps *api.Deps) {
	g := apiGroup.Group("/stock")

	// GET /api/stock – every leaf with its availability state
	g.GET("", func(c echo.Context) error {
		start := time.Now()
		type row struct {
			AddressKey string `json:"address_key"`
			Name       string `json:"name"`
			Price      string `json:"price"`
			Available  bool   `json:"available"`
			ETA        string `json:"eta,omitempty"`
		}
		var rows []row
		deps.Tree.Leaves(func(k catalog.Key, leaf catalog.Leaf) {
			entry := deps.Overlay.Get(k.Token())
			r := row{
				AddressKey: k.Token(),
				Name:       leaf.Name,
				Price:      leaf.Price.StringFixed(2),
				Available:  entry.Available,
			}
			if entry.ETA != nil {
				r.ETA = entry.ETA.Format("2006-01-02")
			}
			rows = append(rows, r)
		})
		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(time.Since(start).Milliseconds(), 10))
		return c.JSON(http.StatusOK, echo.Map{"items": rows, "count": len(rows)})
	})

	// POST /api/stock/set – overwrite one leaf's availability
	g.POST("/set", func(c echo.Context) error {
		var body struct {
			AddressKey string `json:"address_key"`
			Available  bool   `json:"available"`
			ETA        string `json:"eta"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}

		key, err := catalog.ParseKey(body.AddressKey)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if _, err := deps.Tree.Resolve(key); err != nil {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "address key does not resolve: " + err.Error()})
		}

		var eta *time.Time
		if !body.Available && body.ETA != "" {
			t, err := time.Parse("2006-01-02", body.ETA)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "eta must be YYYY-MM-DD"})
			}
			eta = &t
		}

		deps.Overlay.Set(key.Token(), body.Available, eta)
		if err := deps.Overlay.FlushIfDirty(); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"address_key": key.Token(), "available": body.Available})
	})
}
