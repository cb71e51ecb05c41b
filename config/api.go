package config

// GetAuthSkipperPaths returns a list of paths to skip authentication for
func GetAuthSkipperPaths() []string {
	// Public API paths (the stock list is read-only, no auth)
	return []string{"/api/stock"}
}
