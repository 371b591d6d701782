package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/skillsprint/skillsprint-backend/internal/apperr"
	"github.com/skillsprint/skillsprint-backend/internal/logger"
	"github.com/skillsprint/skillsprint-backend/internal/normalization"
	"github.com/skillsprint/skillsprint-backend/internal/repos"
	"github.com/skillsprint/skillsprint-backend/internal/requestdata"
	"github.com/skillsprint/skillsprint-backend/internal/sse"
	"github.com/skillsprint/skillsprint-backend/internal/ssedata"
	"github.com/skillsprint/skillsprint-backend/internal/types"
)

type UserService interface {
	GetMe(ctx context.Context) (*types.User, error)
	UpdateName(ctx context.Context, firstName, lastName string) (*types.User, error)
	GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error)
}

type userService struct {
	log           *logger.Logger
	userRepo      repos.UserRepo
	avatarService AvatarService
	broadcaster   sse.Broadcaster
}

func NewUserService(log *logger.Logger, userRepo repos.UserRepo, avatarService AvatarService, broadcaster sse.Broadcaster) UserService {
	return &userService{
		log:           log.With("service", "UserService"),
		userRepo:      userRepo,
		avatarService: avatarService,
		broadcaster:   broadcaster,
	}
}

func (us *userService) GetMe(ctx context.Context) (*types.User, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: no authenticated user", apperr.ErrUnauthenticated)
	}
	users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{rd.UserID})
	if err != nil {
		return nil, fmt.Errorf("%w: load user: %v", apperr.ErrPersistenceFailure, err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("%w: user no longer exists", apperr.ErrNotFound)
	}
	return users[0], nil
}

func (us *userService) UpdateName(ctx context.Context, firstName, lastName string) (*types.User, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: no authenticated user", apperr.ErrUnauthenticated)
	}
	firstName = normalization.TrimInputString(firstName)
	lastName = normalization.TrimInputString(lastName)
	if firstName == "" {
		return nil, fmt.Errorf("%w: first name cannot be empty", apperr.ErrValidationFailure)
	}

	user, err := us.GetMe(ctx)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{
		"first_name": firstName,
		"last_name":  lastName,
	}
	user.FirstName = firstName
	user.LastName = lastName

	// name drives the initials, so the avatar is re-rendered with it
	if us.avatarService != nil {
		if avatar, aErr := us.avatarService.GenerateUserAvatar(ctx, user); aErr != nil {
			us.log.Warn("Failed to re-render avatar", "error", aErr, "user_id", user.ID)
		} else {
			fields["avatar_png"] = avatar
			user.AvatarPNG = avatar
		}
	}

	if err := us.userRepo.UpdateFields(ctx, nil, user.ID, fields); err != nil {
		return nil, fmt.Errorf("%w: update user: %v", apperr.ErrPersistenceFailure, err)
	}

	ssedata.Append(ctx, us.broadcaster, sse.SSEMessage{
		Channel: sse.UserChannel(user.ID),
		Event:   sse.SSEEventUserNameChanged,
		Data: map[string]any{
			"user_id":    user.ID,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
		},
	})
	return user, nil
}

func (us *userService) GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("%w: load user: %v", apperr.ErrPersistenceFailure, err)
	}
	if len(users) == 0 || len(users[0].AvatarPNG) == 0 {
		return nil, fmt.Errorf("%w: no avatar for user", apperr.ErrNotFound)
	}
	return users[0].AvatarPNG, nil
}
