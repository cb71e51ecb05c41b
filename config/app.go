package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// AppConfig holds global application configuration
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName        string
	Port           string
	Env            string
	Debug          bool
	BotToken       string
	AdminIDs       []int64
	StaffIDs       []int64
	CourierContact string
	CatalogPath    string
	OverlayDB      string
	MediaDir       string
}

// LoadAppConfig initializes the global AppConfig variable
func LoadAppConfig() {
	once.Do(func() {
		AppConfig = &Config{
			AppName:        os.Getenv("APP_NAME"),
			Port:           os.Getenv("PORT"),
			Env:            os.Getenv("APP_ENV"),
			Debug:          os.Getenv("DEBUG") == "true",
			BotToken:       os.Getenv("BOT_TOKEN"),
			AdminIDs:       parseIDList(os.Getenv("ADMIN_IDS")),
			StaffIDs:       parseIDList(os.Getenv("STAFF_IDS")),
			CourierContact: os.Getenv("COURIER_CONTACT"),
			CatalogPath:    getenvDefault("CATALOG_PATH", "catalog.json"),
			OverlayDB:      getenvDefault("OVERLAY_DB", "overlay.db"),
			MediaDir:       os.Getenv("MEDIA_DIR"),
		}
	})
}

// Validate checks startup-critical settings. Errors here are fatal:
// a bot without a token or staff recipients cannot take orders.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("config: BOT_TOKEN is required")
	}
	if len(c.StaffIDs) == 0 {
		return fmt.Errorf("config: STAFF_IDS must list at least one recipient")
	}
	return nil
}

// IsAdmin reports whether id is on the privileged allow-list.
func (c *Config) IsAdmin(id int64) bool {
	for _, a := range c.AdminIDs {
		if a == id {
			return true
		}
	}
	return false
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseIDList(s string) []int64 {
	var out []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}
