package executor

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pricepilot/dynamic-pricing/internal/api/shared/dto"
	"github.com/pricepilot/dynamic-pricing/internal/auth"
	"github.com/pricepilot/dynamic-pricing/internal/domain"
	"github.com/pricepilot/dynamic-pricing/internal/email"
	"github.com/pricepilot/dynamic-pricing/internal/logger"
	"github.com/pricepilot/dynamic-pricing/internal/store"
	"github.com/pricepilot/dynamic-pricing/internal/store/schema"
)

// Session is the result of a successful login. The refresh token is handed
// to the REST layer for the cookie and never serialised into a body.
type Session struct {
	Login            dto.LoginResponse
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// AuthExecutor handles registration and token lifecycle
//
//go:generate mockgen -source=auth.go -destination=../../../mocks/auth_executor.go -package=mocks -mock_names=AuthExecutor=MockAuthExecutor
type AuthExecutor interface {
	// Register creates a profile and logs it in
	Register(ctx context.Context, req dto.RegisterRequest) (*Session, error)
	// Login checks credentials and starts a session
	Login(ctx context.Context, req dto.LoginRequest) (*Session, error)
	// Refresh rotates a refresh token and issues a new access token
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	// Logout revokes a refresh token
	Logout(ctx context.Context, refreshToken string) error
	// Me returns the profile behind an access token
	Me(ctx context.Context, profileID uuid.UUID) (*dto.ProfileResponse, error)
}

func (e *executor) Register(ctx context.Context, req dto.RegisterRequest) (*Session, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	profile, err := e.store.CreateProfile(ctx, store.CreateProfileInput{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	})
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Profile registered", zap.String("profileID", profile.ID.String()))

	if e.cfg.Templates.Welcome != "" {
		err := e.mailer.Send(ctx, email.Message{
			To:       profile.Email,
			ToName:   strings.TrimSpace(profile.FirstName + " " + profile.LastName),
			Template: e.cfg.Templates.Welcome,
			Model: map[string]any{
				"first_name": profile.FirstName,
			},
			Tag: "welcome",
		})
		if err != nil {
			logger.WarnCtx(ctx, "Failed to send welcome email", zap.Error(err), zap.String("profileID", profile.ID.String()))
		}
	}

	return e.startSession(ctx, profile)
}

func (e *executor) Login(ctx context.Context, req dto.LoginRequest) (*Session, error) {
	profile, err := e.store.GetProfileByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, err
	}

	hash := ""
	if profile != nil {
		hash = profile.PasswordHash
	}
	// unknown emails still pay for a bcrypt comparison
	if !auth.CheckPasswordOrDummy(hash, req.Password) || profile == nil {
		return nil, domain.ErrInvalidCredentials
	}

	return e.startSession(ctx, profile)
}

func (e *executor) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, domain.ErrInvalidRefreshToken
	}

	now := e.clock.Now()
	stored, err := e.store.GetRefreshToken(ctx, auth.HashToken(refreshToken))
	if err != nil {
		return nil, err
	}
	if stored == nil || stored.RevokedAt != nil || !stored.ExpiresAt.After(now) {
		return nil, domain.ErrInvalidRefreshToken
	}

	profile, err := e.store.GetProfileByID(ctx, stored.ProfileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrInvalidRefreshToken
	}

	raw, next, err := e.newRefreshToken(profile.ID, now)
	if err != nil {
		return nil, err
	}
	if err := e.store.RotateRefreshToken(ctx, stored.TokenHash, next, now); err != nil {
		return nil, err
	}

	return e.session(profile, raw, next.ExpiresAt, now)
}

func (e *executor) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return e.store.RevokeRefreshToken(ctx, auth.HashToken(refreshToken), e.clock.Now())
}

func (e *executor) Me(ctx context.Context, profileID uuid.UUID) (*dto.ProfileResponse, error) {
	profile, err := e.store.GetProfileByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrProfileNotFound
	}
	return dto.MapProfileToDTO(profile), nil
}

func (e *executor) startSession(ctx context.Context, profile *schema.Profile) (*Session, error) {
	now := e.clock.Now()
	raw, token, err := e.newRefreshToken(profile.ID, now)
	if err != nil {
		return nil, err
	}
	if err := e.store.CreateRefreshToken(ctx, token); err != nil {
		return nil, err
	}
	return e.session(profile, raw, token.ExpiresAt, now)
}

func (e *executor) newRefreshToken(profileID uuid.UUID, now time.Time) (string, *schema.RefreshToken, error) {
	raw, err := auth.NewOpaqueToken()
	if err != nil {
		return "", nil, err
	}
	return raw, &schema.RefreshToken{
		ProfileID: profileID,
		TokenHash: auth.HashToken(raw),
		ExpiresAt: now.Add(e.cfg.RefreshTokenTTL),
	}, nil
}

func (e *executor) session(profile *schema.Profile, refreshToken string, refreshExpiresAt, now time.Time) (*Session, error) {
	access, err := e.tokens.Issue(profile.ID, profile.Email, now)
	if err != nil {
		return nil, err
	}
	return &Session{
		Login: dto.LoginResponse{
			Success:     true,
			AccessToken: access.Token,
			ExpiresIn:   int64(access.ExpiresIn.Seconds()),
			Profile:     dto.MapProfileToDTO(profile),
		},
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}
