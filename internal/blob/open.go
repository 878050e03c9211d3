// Package blob selects the blob.Store backend that state exports are written to.
package blob

import (
	"contactbook/internal/blob/core"
	"contactbook/internal/config"
	"contactbook/internal/infra/blob/fs"
	"contactbook/internal/infra/blob/memory"
	"contactbook/internal/infra/blob/s3"
	"context"
	"fmt"
)

// Open builds the configured store.
//
//	blob.driver: memory|fs|s3 (CONTACTBOOK_BLOB_DRIVER, default memory)
//	blob.fs_root: directory when driver=fs (CONTACTBOOK_BLOB_FS_ROOT)
//	blob.s3.*: bucket, region, endpoint, path_style (CONTACTBOOK_BLOB_S3_*)
func Open(ctx context.Context, cfg config.BlobConfig) (core.Store, error) {
	switch core.Driver(cfg.Driver) {
	case core.DriverMemory, "":
		return memory.New(), nil
	case core.DriverFilesystem:
		return fs.New(cfg.FSRoot)
	case core.DriverS3:
		return s3.New(ctx, s3.Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,

			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
	default:
		return nil, fmt.Errorf("unknown blob driver %s", cfg.Driver)
	}
}
