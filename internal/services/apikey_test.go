package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/skillsprint/skillsprint-backend/internal/apperr"
	"github.com/skillsprint/skillsprint-backend/internal/repos"
	"github.com/skillsprint/skillsprint-backend/internal/repos/testutil"
	"github.com/skillsprint/skillsprint-backend/internal/requestdata"
)

func newKeyServiceForTest(t *testing.T) SecureKeyService {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return NewSecureKeyService(db, log, repos.NewSecureAPIKeyRepo(db, log))
}

func adminCtx() context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID:  uuid.New(),
		IsAdmin: true,
	})
}

func memberCtx() context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID: uuid.New(),
	})
}

func TestSecureKeyServiceRequiresAdmin(t *testing.T) {
	svc := newKeyServiceForTest(t)

	// no identity at all
	if _, err := svc.List(context.Background()); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("anonymous list: %v", err)
	}
	// authenticated but not admin
	ctx := memberCtx()
	if _, err := svc.List(ctx); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("member list: %v", err)
	}
	if _, err := svc.Create(ctx, CreateKeyInput{KeyName: "X", APIKey: "y"}); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("member create: %v", err)
	}
	if err := svc.Delete(ctx, uuid.New()); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("member delete: %v", err)
	}
	if _, err := svc.Update(ctx, uuid.New(), UpdateKeyInput{}); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("member update: %v", err)
	}
}

func TestSecureKeyCreateDefaults(t *testing.T) {
	svc := newKeyServiceForTest(t)
	ctx := adminCtx()

	key, err := svc.Create(ctx, CreateKeyInput{KeyName: "TEST_KEY_A", APIKey: "  secret  ", Description: "primary"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !key.IsActive {
		t.Error("new key should default to active")
	}
	if key.APIKey != "secret" {
		t.Errorf("api key not trimmed: %q", key.APIKey)
	}
	if key.CreatedBy == nil {
		t.Error("created_by not recorded")
	}

	inactive := false
	key2, err := svc.Create(ctx, CreateKeyInput{KeyName: "TEST_KEY_B", APIKey: "s", IsActive: &inactive})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if key2.IsActive {
		t.Error("explicit is_active=false ignored")
	}

	if _, err := svc.Create(ctx, CreateKeyInput{KeyName: "", APIKey: "s"}); !errors.Is(err, apperr.ErrValidationFailure) {
		t.Errorf("blank key_name: %v", err)
	}
	if _, err := svc.Create(ctx, CreateKeyInput{KeyName: "N", APIKey: "   "}); !errors.Is(err, apperr.ErrValidationFailure) {
		t.Errorf("blank api_key: %v", err)
	}
}

func TestSecureKeyUpdateAndToggle(t *testing.T) {
	svc := newKeyServiceForTest(t)
	ctx := adminCtx()

	key, err := svc.Create(ctx, CreateKeyInput{KeyName: "TEST_KEY_C", APIKey: "v1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	newVal := "v2"
	desc := "rotated"
	updated, err := svc.Update(ctx, key.ID, UpdateKeyInput{APIKey: &newVal, Description: &desc})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.APIKey != "v2" || updated.Description != "rotated" {
		t.Errorf("update not applied: %+v", updated)
	}

	toggled, err := svc.ToggleActive(ctx, key.ID, false)
	if err != nil {
		t.Fatalf("ToggleActive: %v", err)
	}
	if toggled.IsActive {
		t.Error("toggle off not applied")
	}

	blank := "  "
	if _, err := svc.Update(ctx, key.ID, UpdateKeyInput{APIKey: &blank}); !errors.Is(err, apperr.ErrValidationFailure) {
		t.Errorf("blank api_key update: %v", err)
	}
	if _, err := svc.Update(ctx, uuid.New(), UpdateKeyInput{APIKey: &newVal}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown key: %v", err)
	}
}

func TestSecureKeyDelete(t *testing.T) {
	svc := newKeyServiceForTest(t)
	ctx := adminCtx()

	key, err := svc.Create(ctx, CreateKeyInput{KeyName: "TEST_KEY_D", APIKey: "v"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(ctx, key.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, key.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("double delete: %v", err)
	}
}
