package media

import (
	"context"
	"fmt"

	"plan-dashboard/internal/config"
)

// Open selects a Store for the configured driver.
func Open(ctx context.Context, cfg config.MediaConfig) (Store, error) {
	switch Driver(cfg.Driver) {
	case DriverMemory, "":
		return NewMemory(), nil
	case DriverFilesystem:
		return NewFilesystem(cfg.FSRoot)
	case DriverS3:
		return NewS3(ctx, S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			PathStyle:       cfg.S3PathStyle,
		})
	default:
		return nil, fmt.Errorf("media: unknown driver %q", cfg.Driver)
	}
}
