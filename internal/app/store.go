package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/parsegrid/internal/objectstore"
)

// newStore builds the remote module store selected by the configuration.
// It returns nil when remote modules are disabled.
func (a *App) newStore(ctx context.Context) (objectstore.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	switch a.config.StoreKind {
	case StoreDir:
		a.logger.Debug("Using directory module store.", "root", a.config.StoreRoot)
		return objectstore.NewDir(a.config.StoreRoot), nil
	case StoreS3:
		a.logger.Debug("Using S3 module store.", "region", a.config.S3Region, "endpoint", a.config.S3Endpoint)
		s3, err := objectstore.NewS3(ctx, objectstore.S3Options{
			Region:   a.config.S3Region,
			Endpoint: a.config.S3Endpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to configure S3 module store: %w", err)
		}
		return s3, nil
	default:
		a.logger.Debug("No remote module store configured.")
		return nil, nil
	}
}
