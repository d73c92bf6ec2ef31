// Package web embeds the browser client.
package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
)

//go:embed static
var static embed.FS

// ConfigJSPath is the file the client loads its settings from.
const ConfigJSPath = "config.js"

// ClientConfig is what the browser client reads from config.js.
type ClientConfig struct {
	APIURL string `json:"apiUrl"`
	// APIKey is sent as X-Api-Key. It is readable by anyone who can load the
	// page, so only set it for deployments where that is acceptable.
	APIKey string `json:"apiKey,omitempty"`
}

// FS returns the client files rooted at the site root.
func FS() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// ConfigJS renders config.js for cfg.
func ConfigJS(cfg ClientConfig) []byte {
	b, _ := json.Marshal(cfg)
	return []byte(fmt.Sprintf("window.TODO_CONFIG = %s;\n", b))
}
