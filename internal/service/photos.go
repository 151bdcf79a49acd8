package service

import (
	"context"
	"time"

	"user_auth/internal/model"
	"user_auth/internal/storage"

	"go.uber.org/zap"
)

// photos saves uploads ahead of a transaction and cleans up around it
type photos struct {
	media  storage.Storage
	logger *zap.Logger
	now    func() time.Time
}

func (p *photos) save(ctx context.Context, up *model.Upload) (*string, error) {
	if up == nil {
		return nil, nil
	}
	key := storage.NewPhotoKey(storage.ExtensionFor(up.ContentType), p.now())
	if err := p.media.Save(ctx, key, up.Data, up.ContentType); err != nil {
		return nil, err
	}
	return &key, nil
}

// remove deletes an asset whose database reference is gone. Failures are
// logged, the row change has already been committed.
func (p *photos) remove(ctx context.Context, key *string) {
	if key == nil || *key == "" {
		return
	}
	if err := p.media.Delete(ctx, *key); err != nil {
		p.logger.Warn("failed to delete photo", zap.String("key", *key), zap.Error(err))
	}
}
