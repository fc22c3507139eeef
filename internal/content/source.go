package content

import (
	"context"
	"fmt"
	"log"
	"os"

	"portfolio/internal/config"
)

// LoadConfigured loads the store from the bucket when CONTENT_S3_BUCKET is
// set, otherwise from CONTENT_DIR.
func LoadConfigured(ctx context.Context, cfg *config.Config) (*Store, error) {
	if cfg.ContentS3Bucket == "" {
		store, err := Load(os.DirFS(cfg.ContentDir))
		if err != nil {
			return nil, err
		}
		log.Printf("📚 Loaded %d jobs and %d education entries from %s", len(store.jobs), len(store.educations), cfg.ContentDir)
		return store, nil
	}

	client, err := NewS3Client(ctx, S3Config{
		Bucket:    cfg.ContentS3Bucket,
		Prefix:    cfg.ContentS3Prefix,
		Endpoint:  cfg.ContentS3Endpoint,
		Region:    cfg.ContentS3Region,
		AccessKey: cfg.AWSAccessKeyID,
		SecretKey: cfg.AWSSecretKey,
	})
	if err != nil {
		return nil, err
	}
	dir, err := os.MkdirTemp("", "portfolio-content-")
	if err != nil {
		return nil, fmt.Errorf("create content mirror dir: %w", err)
	}
	defer os.RemoveAll(dir)

	fsys, err := MirrorS3(ctx, client, cfg.ContentS3Bucket, cfg.ContentS3Prefix, dir)
	if err != nil {
		return nil, err
	}
	store, err := Load(fsys)
	if err != nil {
		return nil, err
	}
	log.Printf("📚 Loaded %d jobs and %d education entries from s3://%s/%s", len(store.jobs), len(store.educations), cfg.ContentS3Bucket, cfg.ContentS3Prefix)
	return store, nil
}
