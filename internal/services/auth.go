package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/skillsprint/skillsprint-backend/internal/apperr"
	"github.com/skillsprint/skillsprint-backend/internal/logger"
	"github.com/skillsprint/skillsprint-backend/internal/normalization"
	"github.com/skillsprint/skillsprint-backend/internal/repos"
	"github.com/skillsprint/skillsprint-backend/internal/requestdata"
	"github.com/skillsprint/skillsprint-backend/internal/types"
)

type JWTClaims struct {
	jwt.RegisteredClaims
	Admin bool `json:"adm,omitempty"`
}

type AuthService interface {
	RegisterUser(ctx context.Context, user *types.User) error
	LoginUser(ctx context.Context, email, password string) (string, string, error)
	RefreshUser(ctx context.Context) (string, string, error)
	LogoutUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	avatarService AvatarService
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	avatarService AvatarService,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		avatarService: avatarService,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) RegisterUser(ctx context.Context, user *types.User) error {
	user.Email = normalization.ParseInputString(user.Email)
	user.FirstName = normalization.TrimInputString(user.FirstName)
	user.LastName = normalization.TrimInputString(user.LastName)

	if user.Email == "" {
		return fmt.Errorf("%w: an email is required to register", apperr.ErrValidationFailure)
	}
	if user.Password == "" {
		return fmt.Errorf("%w: a password is required to register", apperr.ErrValidationFailure)
	}
	if user.FirstName == "" {
		return fmt.Errorf("%w: a name is required to register", apperr.ErrValidationFailure)
	}
	exists, err := as.userRepo.EmailExists(ctx, nil, user.Email)
	if err != nil {
		return fmt.Errorf("%w: check email: %v", apperr.ErrPersistenceFailure, err)
	}
	if exists {
		return fmt.Errorf("%w: email is already in use", apperr.ErrValidationFailure)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)

	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user.ID = uuid.New()
		if as.avatarService != nil {
			avatar, aErr := as.avatarService.GenerateUserAvatar(ctx, user)
			if aErr != nil {
				// registration still succeeds without an avatar
				as.log.Warn("Failed to render avatar", "error", aErr, "user_id", user.ID)
			} else {
				user.AvatarPNG = avatar
			}
		}
		if _, cErr := as.userRepo.Create(ctx, tx, []*types.User{user}); cErr != nil {
			return fmt.Errorf("%w: create user: %v", apperr.ErrPersistenceFailure, cErr)
		}
		return nil
	})
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
	email = normalization.ParseInputString(email)
	if email == "" || password == "" {
		return "", "", fmt.Errorf("%w: email and password are required", apperr.ErrValidationFailure)
	}

	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return "", "", fmt.Errorf("%w: fetch user: %v", apperr.ErrPersistenceFailure, err)
	}
	if len(users) == 0 {
		return "", "", fmt.Errorf("%w: invalid email or password", apperr.ErrUnauthenticated)
	}
	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", fmt.Errorf("%w: invalid email or password", apperr.ErrUnauthenticated)
	}

	var accessToken, refreshToken string
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// one live token row per user: replace whatever is there
		if dErr := as.userTokenRepo.DeleteByUserIDs(ctx, tx, []uuid.UUID{user.ID}); dErr != nil {
			return fmt.Errorf("%w: clear old tokens: %v", apperr.ErrPersistenceFailure, dErr)
		}
		tok, genErr := as.generateAccessToken(user)
		if genErr != nil {
			return fmt.Errorf("generate access token: %w", genErr)
		}
		accessToken = tok
		refreshToken = uuid.New().String()

		row := &types.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		if _, cErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{row}); cErr != nil {
			return fmt.Errorf("%w: create token: %v", apperr.ErrPersistenceFailure, cErr)
		}
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (as *authService) RefreshUser(ctx context.Context) (string, string, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.RefreshToken == "" {
		return "", "", fmt.Errorf("%w: no refresh token in session", apperr.ErrUnauthenticated)
	}

	var accessToken, newRefreshToken string
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, fErr := as.userTokenRepo.GetByRefreshTokens(ctx, tx, []string{rd.RefreshToken})
		if fErr != nil {
			return fmt.Errorf("%w: fetch refresh token: %v", apperr.ErrPersistenceFailure, fErr)
		}
		if len(found) == 0 {
			return fmt.Errorf("%w: unknown refresh token", apperr.ErrUnauthenticated)
		}
		existing := found[0]
		if existing.ExpiresAt.Before(time.Now()) {
			_ = as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{existing.ID})
			return fmt.Errorf("%w: refresh token expired", apperr.ErrUnauthenticated)
		}

		users, uErr := as.userRepo.GetByIDs(ctx, tx, []uuid.UUID{existing.UserID})
		if uErr != nil {
			return fmt.Errorf("%w: load user: %v", apperr.ErrPersistenceFailure, uErr)
		}
		if len(users) == 0 {
			return fmt.Errorf("%w: no user for refresh token", apperr.ErrUnauthenticated)
		}

		tok, genErr := as.generateAccessToken(users[0])
		if genErr != nil {
			return fmt.Errorf("generate access token: %w", genErr)
		}
		accessToken = tok
		newRefreshToken = uuid.New().String()

		row := &types.UserToken{
			ID:           uuid.New(),
			UserID:       users[0].ID,
			AccessToken:  accessToken,
			RefreshToken: newRefreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		if _, cErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{row}); cErr != nil {
			return fmt.Errorf("%w: create token: %v", apperr.ErrPersistenceFailure, cErr)
		}
		if dErr := as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{existing.ID}); dErr != nil {
			return fmt.Errorf("%w: remove old token: %v", apperr.ErrPersistenceFailure, dErr)
		}
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, newRefreshToken, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return fmt.Errorf("%w: no session", apperr.ErrUnauthenticated)
	}
	found, err := as.userTokenRepo.GetByAccessTokens(ctx, nil, []string{rd.TokenString})
	if err != nil {
		return fmt.Errorf("%w: fetch token: %v", apperr.ErrPersistenceFailure, err)
	}
	if len(found) == 0 {
		return nil
	}
	if err := as.userTokenRepo.DeleteByIDs(ctx, nil, []uuid.UUID{found[0].ID}); err != nil {
		return fmt.Errorf("%w: delete token: %v", apperr.ErrPersistenceFailure, err)
	}
	return nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			// jti keeps tokens minted in the same second distinct
			ID:        uuid.New().String(),
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Admin: user.IsAdmin,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

// SetContextFromToken validates the JWT, requires a live token row, and
// populates the request identity. Admin status is re-read from the user row
// so a revoked role takes effect without waiting out the JWT TTL.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, fmt.Errorf("%w: missing token", apperr.ErrUnauthenticated)
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("%w: parse token: %v", apperr.ErrUnauthenticated, err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, fmt.Errorf("%w: invalid or expired token", apperr.ErrUnauthenticated)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("%w: invalid user id in token", apperr.ErrUnauthenticated)
	}

	found, err := as.userTokenRepo.GetByAccessTokens(ctx, nil, []string{tokenString})
	if err != nil {
		return ctx, fmt.Errorf("%w: fetch token row: %v", apperr.ErrPersistenceFailure, err)
	}
	if len(found) == 0 {
		return ctx, fmt.Errorf("%w: session revoked", apperr.ErrUnauthenticated)
	}

	users, err := as.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return ctx, fmt.Errorf("%w: load user: %v", apperr.ErrPersistenceFailure, err)
	}
	if len(users) == 0 {
		return ctx, fmt.Errorf("%w: user no longer exists", apperr.ErrUnauthenticated)
	}

	rd := &requestdata.RequestData{
		TokenString:  tokenString,
		RefreshToken: found[0].RefreshToken,
		UserID:       userID,
		IsAdmin:      users[0].IsAdmin,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
