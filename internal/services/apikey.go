package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillsprint/skillsprint-backend/internal/apperr"
	"github.com/skillsprint/skillsprint-backend/internal/logger"
	"github.com/skillsprint/skillsprint-backend/internal/repos"
	"github.com/skillsprint/skillsprint-backend/internal/requestdata"
	"github.com/skillsprint/skillsprint-backend/internal/types"
)

type CreateKeyInput struct {
	KeyName     string `json:"key_name"`
	APIKey      string `json:"api_key"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

type UpdateKeyInput struct {
	APIKey      *string `json:"api_key"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// SecureKeyService is the admin CRUD surface over named provider secrets.
// Authorization lives here, at the data-access boundary: every operation
// checks the caller's admin flag, independent of any route middleware.
type SecureKeyService interface {
	List(ctx context.Context) ([]*types.SecureAPIKey, error)
	Create(ctx context.Context, input CreateKeyInput) (*types.SecureAPIKey, error)
	Update(ctx context.Context, keyID uuid.UUID, input UpdateKeyInput) (*types.SecureAPIKey, error)
	Delete(ctx context.Context, keyID uuid.UUID) error
	ToggleActive(ctx context.Context, keyID uuid.UUID, active bool) (*types.SecureAPIKey, error)
}

type secureKeyService struct {
	db      *gorm.DB
	log     *logger.Logger
	keyRepo repos.SecureAPIKeyRepo
}

func NewSecureKeyService(db *gorm.DB, log *logger.Logger, keyRepo repos.SecureAPIKeyRepo) SecureKeyService {
	return &secureKeyService{
		db:      db,
		log:     log.With("service", "SecureKeyService"),
		keyRepo: keyRepo,
	}
}

func requireAdmin(ctx context.Context) (*requestdata.RequestData, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: no session", apperr.ErrUnauthenticated)
	}
	if !rd.IsAdmin {
		return nil, fmt.Errorf("%w: admin role required", apperr.ErrForbidden)
	}
	return rd, nil
}

func (ks *secureKeyService) List(ctx context.Context) ([]*types.SecureAPIKey, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	keys, err := ks.keyRepo.ListAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: list keys: %v", apperr.ErrPersistenceFailure, err)
	}
	return keys, nil
}

func (ks *secureKeyService) Create(ctx context.Context, input CreateKeyInput) (*types.SecureAPIKey, error) {
	rd, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	keyName := strings.TrimSpace(input.KeyName)
	apiKey := strings.TrimSpace(input.APIKey)
	if keyName == "" || apiKey == "" {
		return nil, fmt.Errorf("%w: key_name and api_key are required", apperr.ErrValidationFailure)
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	createdBy := rd.UserID
	row := &types.SecureAPIKey{
		ID:          uuid.New(),
		KeyName:     keyName,
		APIKey:      apiKey,
		Description: strings.TrimSpace(input.Description),
		IsActive:    isActive,
		CreatedBy:   &createdBy,
	}
	if _, err := ks.keyRepo.Create(ctx, nil, []*types.SecureAPIKey{row}); err != nil {
		return nil, fmt.Errorf("%w: create key: %v", apperr.ErrPersistenceFailure, err)
	}
	ks.log.Info("API key created", "key_name", keyName, "created_by", rd.UserID)
	return row, nil
}

func (ks *secureKeyService) Update(ctx context.Context, keyID uuid.UUID, input UpdateKeyInput) (*types.SecureAPIKey, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.APIKey != nil {
		if strings.TrimSpace(*input.APIKey) == "" {
			return nil, fmt.Errorf("%w: api_key cannot be blank", apperr.ErrValidationFailure)
		}
		fields["api_key"] = strings.TrimSpace(*input.APIKey)
	}
	if input.Description != nil {
		fields["description"] = strings.TrimSpace(*input.Description)
	}
	if input.IsActive != nil {
		fields["is_active"] = *input.IsActive
	}

	existing, err := ks.getOne(ctx, keyID)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return existing, nil
	}

	if err := ks.keyRepo.UpdateFields(ctx, nil, keyID, fields); err != nil {
		return nil, fmt.Errorf("%w: update key: %v", apperr.ErrPersistenceFailure, err)
	}
	return ks.getOne(ctx, keyID)
}

func (ks *secureKeyService) Delete(ctx context.Context, keyID uuid.UUID) error {
	if _, err := requireAdmin(ctx); err != nil {
		return err
	}
	if _, err := ks.getOne(ctx, keyID); err != nil {
		return err
	}
	if err := ks.keyRepo.DeleteByIDs(ctx, nil, []uuid.UUID{keyID}); err != nil {
		return fmt.Errorf("%w: delete key: %v", apperr.ErrPersistenceFailure, err)
	}
	return nil
}

func (ks *secureKeyService) ToggleActive(ctx context.Context, keyID uuid.UUID, active bool) (*types.SecureAPIKey, error) {
	return ks.Update(ctx, keyID, UpdateKeyInput{IsActive: &active})
}

func (ks *secureKeyService) getOne(ctx context.Context, keyID uuid.UUID) (*types.SecureAPIKey, error) {
	rows, err := ks.keyRepo.GetByIDs(ctx, nil, []uuid.UUID{keyID})
	if err != nil {
		return nil, fmt.Errorf("%w: fetch key: %v", apperr.ErrPersistenceFailure, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no such key", apperr.ErrNotFound)
	}
	return rows[0], nil
}
