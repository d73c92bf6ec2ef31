package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/birlikkoshan/todo-serverless/internal/awsclient"
	"github.com/birlikkoshan/todo-serverless/internal/config"
	"github.com/birlikkoshan/todo-serverless/internal/publish"
	"github.com/birlikkoshan/todo-serverless/web"

	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/spf13/cobra"
)

func newPublishCmd() *cobra.Command {
	var bucket, prefix, apiURL, apiKey string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload the client to an S3 bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if bucket == "" {
				bucket = cfg.Web.Bucket
			}
			if prefix == "" {
				prefix = cfg.Web.Prefix
			}
			if apiURL == "" {
				apiURL = cfg.Web.APIURL
			}
			if apiKey == "" {
				apiKey = cfg.Web.APIKey
			}
			if bucket == "" {
				return errors.New("bucket is required (--bucket or WEB_BUCKET)")
			}

			sess, err := awsclient.NewSession(cfg.AWS)
			if err != nil {
				return err
			}
			p := publish.NewPublisher(s3.New(sess), bucket, prefix)

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()
			keys, err := p.Publish(ctx, web.FS(), map[string][]byte{web.ConfigJSPath: web.ConfigJS(web.ClientConfig{APIURL: apiURL, APIKey: apiKey})})
			for _, k := range keys {
				log.Printf("uploaded s3://%s/%s", bucket, k)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %d files to s3://%s\n", len(keys), bucket)
			return nil
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "target bucket (default WEB_BUCKET)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "key prefix (default WEB_PREFIX)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key the client sends as X-Api-Key (default WEB_API_KEY)")
	cmd.Flags().StringVar(&apiURL, "api-url", "", "API base URL baked into config.js (default WEB_API_URL)")
	return cmd
}
