package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/birlikkoshan/todo-serverless/internal/config"
	"github.com/birlikkoshan/todo-serverless/web"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port, apiURL, apiKey string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the client on a local port",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port == "" {
				port = cfg.Web.Port
			}
			if apiURL == "" {
				apiURL = cfg.Web.APIURL
			}
			if apiKey == "" {
				apiKey = cfg.Web.APIKey
			}

			site := web.FS()
			entries, err := fs.ReadDir(site, ".")
			if err != nil {
				return err
			}
			log.Printf("serving client files:")
			for _, e := range entries {
				log.Printf("  %s", e.Name())
			}

			server := &http.Server{
				Addr:              ":" + port,
				Handler:           newSiteRouter(site, web.ClientConfig{APIURL: apiURL, APIKey: apiKey}),
				ReadHeaderTimeout: 10 * time.Second,
			}
			go func() {
				log.Printf("client at http://localhost:%s (API %s)", port, apiURL)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("HTTP server error: %v", err)
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit
			log.Printf("server stopped")

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(ctx)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (default WEB_PORT)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key the client sends as X-Api-Key (default WEB_API_KEY)")
	cmd.Flags().StringVar(&apiURL, "api-url", "", "API base URL the client calls (default WEB_API_URL)")
	return cmd
}

// newSiteRouter serves the static client plus a generated config.js.
func newSiteRouter(site fs.FS, client web.ClientConfig) *gin.Engine {
	r := gin.Default()
	configJS := web.ConfigJS(client)
	r.GET("/"+web.ConfigJSPath, func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache")
		c.Data(http.StatusOK, "text/javascript; charset=utf-8", configJS)
	})
	r.NoRoute(gin.WrapH(http.FileServer(http.FS(site))))
	return r
}
