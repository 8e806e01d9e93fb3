package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yomikata/yomikata-backend/internal/data/repos"
	types "github.com/yomikata/yomikata-backend/internal/domain"
	"github.com/yomikata/yomikata-backend/internal/gamify"
	"github.com/yomikata/yomikata-backend/internal/pkg/errors"
	"github.com/yomikata/yomikata-backend/internal/pkg/pgerr"
	"github.com/yomikata/yomikata-backend/internal/platform/logger"
	"github.com/yomikata/yomikata-backend/internal/requestdata"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

type JWTClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthService interface {
	RegisterUser(ctx context.Context, input RegisterInput) (*types.User, string, error)
	LoginUser(ctx context.Context, input LoginInput) (*types.User, string, error)
	// SetContextFromToken validates a bearer token and attaches request
	// data to the context. An empty token passes through untouched.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	avatarService AvatarService
	jwtSecretKey  string
	accessTTL     time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	avatarService AvatarService,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		avatarService: avatarService,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
	}
}

func (as *authService) RegisterUser(ctx context.Context, input RegisterInput) (*types.User, string, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if !usernameRe.MatchString(username) {
		return nil, "", fmt.Errorf("username must be 3-30 characters of letters, digits or underscore: %w", errors.ErrInvalidArgument)
	}
	if !strings.Contains(email, "@") {
		return nil, "", fmt.Errorf("invalid email: %w", errors.ErrInvalidArgument)
	}
	if len(input.Password) < 8 {
		return nil, "", fmt.Errorf("password must be at least 8 characters: %w", errors.ErrInvalidArgument)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &types.User{
		ID:            uuid.New(),
		Username:      username,
		Email:         email,
		Password:      string(hash),
		TrustScore:    gamify.TrustMax,
		Level:         1,
		CurrentSeason: gamify.SeasonCode(now),
	}

	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := as.userRepo.GetByUsernames(ctx, tx, []string{username})
		if err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if len(existing) > 0 {
			return fmt.Errorf("username taken: %w", errors.ErrAlreadyExists)
		}
		existing, err = as.userRepo.GetByEmails(ctx, tx, []string{email})
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if len(existing) > 0 {
			return fmt.Errorf("email taken: %w", errors.ErrAlreadyExists)
		}

		if err := as.avatarService.CreateUserAvatar(ctx, user); err != nil {
			return fmt.Errorf("failed to create user avatar: %w", err)
		}
		if _, err := as.userRepo.Create(ctx, tx, []*types.User{user}); err != nil {
			// Two registrations can pass the pre-checks at once; the unique
			// indexes decide, and the loser gets the same conflict error.
			if pgerr.IsUniqueViolation(err, "") {
				return fmt.Errorf("username or email taken: %w", errors.ErrAlreadyExists)
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	token, err := as.generateAccessToken(user)
	if err != nil {
		return nil, "", err
	}
	as.log.Info("User registered", "user_id", user.ID.String())
	return user, token, nil
}

func (as *authService) LoginUser(ctx context.Context, input LoginInput) (*types.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}
	if len(users) == 0 {
		return nil, "", fmt.Errorf("invalid credentials: %w", errors.ErrUnauthorized)
	}
	user := users[0]

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return nil, "", fmt.Errorf("invalid credentials: %w", errors.ErrUnauthorized)
	}

	token, err := as.generateAccessToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	claims := JWTClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("failed to parse token: %w", errors.ErrUnauthorized)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("invalid or expired token: %w", errors.ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", errors.ErrUnauthorized)
	}
	return requestdata.WithRequestData(ctx, &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		Username:    claims.Username,
	}), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
