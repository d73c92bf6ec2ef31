// Package publish uploads the browser client to an S3 bucket for static hosting.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"mime"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

const defaultContentType = "application/octet-stream"

// Publisher copies a file tree into a bucket under an optional key prefix.
type Publisher struct {
	s3     s3iface.S3API
	bucket string
	prefix string
}

func NewPublisher(client s3iface.S3API, bucket, prefix string) *Publisher {
	return &Publisher{s3: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// Publish uploads every regular file in fsys, then the extra files (path → content),
// which override files of the same path. It returns the uploaded keys in order.
func (p *Publisher) Publish(ctx context.Context, fsys fs.FS, extra map[string][]byte) ([]string, error) {
	files := make(map[string][]byte)
	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		files[name] = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading site files: %w", err)
	}
	for name, b := range extra {
		files[name] = b
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	keys := make([]string, 0, len(names))
	for _, name := range names {
		key := p.key(name)
		if err := p.put(ctx, key, files[name]); err != nil {
			return keys, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (p *Publisher) put(ctx context.Context, key string, body []byte) error {
	_, err := p.s3.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(p.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(ContentType(key)),
		CacheControl: aws.String("no-cache"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

func (p *Publisher) key(name string) string {
	if p.prefix == "" {
		return name
	}
	return path.Join(p.prefix, name)
}

// ContentType guesses the MIME type from the file extension.
func ContentType(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return defaultContentType
}
