package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillsprint/skillsprint-backend/internal/logger"
	"github.com/skillsprint/skillsprint-backend/internal/types"
)

type SecureAPIKeyRepo interface {
	Create(ctx context.Context, tx *gorm.DB, keys []*types.SecureAPIKey) ([]*types.SecureAPIKey, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, keyIDs []uuid.UUID) ([]*types.SecureAPIKey, error)
	// ListAll returns every key ordered newest-first.
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.SecureAPIKey, error)
	// GetActiveByName resolves the newest active key for a name, or nil.
	GetActiveByName(ctx context.Context, tx *gorm.DB, keyName string) (*types.SecureAPIKey, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, keyID uuid.UUID, fields map[string]any) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, keyIDs []uuid.UUID) error
}

type secureAPIKeyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSecureAPIKeyRepo(db *gorm.DB, baseLog *logger.Logger) SecureAPIKeyRepo {
	return &secureAPIKeyRepo{db: db, log: baseLog.With("repo", "SecureAPIKeyRepo")}
}

func (r *secureAPIKeyRepo) Create(ctx context.Context, tx *gorm.DB, keys []*types.SecureAPIKey) ([]*types.SecureAPIKey, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(keys) == 0 {
		return []*types.SecureAPIKey{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *secureAPIKeyRepo) GetByIDs(ctx context.Context, tx *gorm.DB, keyIDs []uuid.UUID) ([]*types.SecureAPIKey, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.SecureAPIKey
	if len(keyIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", keyIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *secureAPIKeyRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.SecureAPIKey, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.SecureAPIKey
	if err := transaction.WithContext(ctx).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *secureAPIKeyRepo) GetActiveByName(ctx context.Context, tx *gorm.DB, keyName string) (*types.SecureAPIKey, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.SecureAPIKey
	if err := transaction.WithContext(ctx).
		Where("key_name = ? AND is_active = ?", keyName, true).
		Order("created_at DESC").
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *secureAPIKeyRepo) UpdateFields(ctx context.Context, tx *gorm.DB, keyID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(fields) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.SecureAPIKey{}).
		Where("id = ?", keyID).
		Updates(fields).Error
}

func (r *secureAPIKeyRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, keyIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(keyIDs) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id IN ?", keyIDs).
		Delete(&types.SecureAPIKey{}).Error
}
