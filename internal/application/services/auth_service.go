package services

import (
	"fmt"
	"time"

	"github.com/AtRiskMedia/sunset-go/internal/domain/user"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/security"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/site"
	"golang.org/x/crypto/bcrypt"
)

// AuthService authenticates operators and issues their dashboard tokens.
type AuthService struct {
	logger *logging.ChanneledLogger
}

// NewAuthService creates a new auth service
func NewAuthService(logger *logging.ChanneledLogger) *AuthService {
	return &AuthService{logger: logger}
}

// LoginRequest is the operator login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest creates a new operator account.
type RegisterRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	Subscribed bool   `json:"subscribed"`
}

// Login verifies operator credentials and returns a signed JWT. The error is
// deliberately uniform so callers cannot probe which accounts exist.
func (s *AuthService) Login(req *LoginRequest, siteCtx *site.Context) (string, error) {
	operator, err := siteCtx.OperatorRepo().FindByEmail(req.Email)
	if err != nil {
		s.logger.Auth().Error("Operator lookup failed", "siteId", siteCtx.SiteID, "error", err)
		return "", fmt.Errorf("authentication failed")
	}
	if operator == nil {
		s.logger.Auth().Warn("Login attempt for unknown operator", "siteId", siteCtx.SiteID)
		return "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(operator.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Auth().Warn("Login attempt with wrong password", "siteId", siteCtx.SiteID, "operatorId", operator.ID)
		return "", fmt.Errorf("invalid credentials")
	}

	token, err := security.GenerateOperatorToken(operator.ID, operator.Email, siteCtx.Config.JWTSecret)
	if err != nil {
		s.logger.Auth().Error("Token generation failed", "siteId", siteCtx.SiteID, "operatorId", operator.ID, "error", err)
		return "", fmt.Errorf("authentication failed")
	}

	s.logger.Auth().Info("Operator logged in", "siteId", siteCtx.SiteID, "operatorId", operator.ID)
	return token, nil
}

// Register creates a new operator account with a bcrypt password hash.
func (s *AuthService) Register(req *RegisterRequest, siteCtx *site.Context) (*user.Operator, error) {
	existing, err := siteCtx.OperatorRepo().FindByEmail(req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing operator: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("operator already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	operator := &user.Operator{
		ID:           security.GenerateULID(),
		Email:        req.Email,
		PasswordHash: string(hash),
		Subscribed:   req.Subscribed,
		CreatedAt:    time.Now().UTC(),
	}

	if err := siteCtx.OperatorRepo().Create(operator); err != nil {
		return nil, fmt.Errorf("failed to create operator: %w", err)
	}

	s.logger.Auth().Info("Operator registered", "siteId", siteCtx.SiteID, "operatorId", operator.ID)
	return operator, nil
}

// ValidateToken checks a bearer token against the site's JWT secret and
// returns the operator ID it was issued to.
func (s *AuthService) ValidateToken(tokenString string, siteCtx *site.Context) (string, error) {
	claims, err := security.ValidateJWT(tokenString, siteCtx.Config.JWTSecret)
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	operatorID, ok := security.OperatorIDFromClaims(claims)
	if !ok {
		return "", fmt.Errorf("token missing operator claim")
	}

	return operatorID, nil
}
