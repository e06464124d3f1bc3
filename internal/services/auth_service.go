package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"gudangmitra/internal/caching"
	"gudangmitra/internal/common"
	"gudangmitra/internal/models"
	"gudangmitra/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles credential checks and JWT token management
type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.TokenResponse, error)
	Register(ctx context.Context, name, email, password, role string, department *string) (*models.User, error)
	GenerateTokens(ctx context.Context, user *models.User) (*models.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
	RevokeToken(ctx context.Context, token string) error
	IsTokenRevoked(ctx context.Context, tokenID string) bool
}

// TokenClaims represents JWT claims
type TokenClaims struct {
	UserID  string `json:"user_id"`
	Role    string `json:"role"`
	TokenID string `json:"token_id"`
	jwt.RegisteredClaims
}

type authService struct {
	userRepo   repositories.UserRepository
	cacheSvc   caching.CacheService
	jwtSecret  []byte
	tokenTTL   int // Access token TTL in seconds
	refreshTTL int // Refresh token TTL in seconds
}

// NewAuthService creates a new authentication service
func NewAuthService(userRepo repositories.UserRepository, cacheSvc caching.CacheService,
	jwtSecret string, tokenTTLSeconds, refreshTTLSeconds int) AuthService {
	return &authService{
		userRepo:   userRepo,
		cacheSvc:   cacheSvc,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTLSeconds,
		refreshTTL: refreshTTLSeconds,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.TokenResponse, error) {
	if email == "" || password == "" {
		return nil, common.NewValidationError("credentials", "email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Same answer for unknown email and wrong password.
		return nil, common.NewAuthorizationError("log in")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.NewAuthorizationError("log in")
	}

	return s.GenerateTokens(ctx, user)
}

// Register creates a new account. It does not log the user in; callers go
// through Login afterwards.
func (s *authService) Register(ctx context.Context, name, email, password, role string, department *string) (*models.User, error) {
	if name == "" {
		return nil, common.NewValidationError("name", "name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, common.NewValidationError("email", "a valid email is required")
	}
	if len(password) < 8 {
		return nil, common.NewValidationError("password", "password must be at least 8 characters")
	}
	if role == "" {
		role = models.RoleRequester
	}
	if !models.ValidRole(role) {
		return nil, common.NewValidationError("role", "unknown role "+role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        strings.ToLower(email),
		PasswordHash: string(hash),
		Role:         role,
		Department:   department,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	log.Printf("user registered: %s (%s)", user.Email, user.Role)
	return user, nil
}

// GenerateTokens generates access and refresh tokens for a user
func (s *authService) GenerateTokens(ctx context.Context, user *models.User) (*models.TokenResponse, error) {
	now := time.Now()
	tokenID := uuid.NewString()

	claims := TokenClaims{
		UserID:  user.ID.String(),
		Role:    user.Role,
		TokenID: tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "gudangmitra-auth",
			Subject:   user.ID.String(),
			Audience:  jwt.ClaimStrings{"gudangmitra-api"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.tokenTTL) * time.Second)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        tokenID,
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessTokenString, err := accessToken.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %v", err)
	}

	refreshToken := s.generateSecureToken()
	refreshTokenHash := s.hashToken(refreshToken)

	refreshTokenData := fmt.Sprintf("%s:%s:%d", user.ID.String(), user.Role, now.Unix()+int64(s.refreshTTL))
	cacheKey := fmt.Sprintf("gudang:refresh_token:%s", refreshTokenHash)
	if err := s.cacheSvc.SetString(ctx, cacheKey, refreshTokenData, time.Duration(s.refreshTTL)*time.Second); err != nil {
		log.Printf("Failed to store refresh token: %v", err)
		// Continue - token generation succeeded
	}

	return &models.TokenResponse{
		AccessToken:  accessTokenString,
		TokenType:    "Bearer",
		ExpiresIn:    s.tokenTTL,
		RefreshToken: refreshToken,
		UserID:       user.ID.String(),
		Role:         user.Role,
		TokenID:      tokenID,
		IssuedAt:     now,
	}, nil
}

// RefreshToken validates and uses a refresh token to generate new tokens
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	refreshTokenHash := s.hashToken(refreshToken)

	cacheKey := fmt.Sprintf("gudang:refresh_token:%s", refreshTokenHash)
	tokenData, err := s.cacheSvc.GetString(ctx, cacheKey)
	if err != nil || tokenData == "" {
		return nil, common.NewAuthorizationError("refresh session")
	}

	parts := strings.Split(tokenData, ":")
	if len(parts) != 3 {
		return nil, common.NewAuthorizationError("refresh session")
	}

	userIDStr, _, expiryStr := parts[0], parts[1], parts[2]
	expiry, err := strconv.ParseInt(expiryStr, 10, 64)
	if err != nil || time.Now().Unix() > expiry {
		s.cacheSvc.Delete(ctx, cacheKey)
		return nil, common.NewAuthorizationError("refresh session")
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, common.NewAuthorizationError("refresh session")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, common.NewAuthorizationError("refresh session")
	}

	// Rotate: the old refresh token is single use.
	s.cacheSvc.Delete(ctx, cacheKey)
	return s.GenerateTokens(ctx, user)
}

// ValidateToken validates a JWT access token
func (s *authService) ValidateToken(ctx context.Context, token string) (*TokenClaims, error) {
	jwtToken, err := jwt.ParseWithClaims(token, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %v", err)
	}

	claims, ok := jwtToken.Claims.(*TokenClaims)
	if !ok || !jwtToken.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if s.IsTokenRevoked(ctx, claims.TokenID) {
		return nil, fmt.Errorf("token revoked")
	}
	return claims, nil
}

// RevokeToken denylists an access token until its natural expiry
func (s *authService) RevokeToken(ctx context.Context, token string) error {
	claims, err := s.ValidateToken(ctx, token)
	if err != nil {
		return fmt.Errorf("cannot revoke invalid token: %v", err)
	}

	denyKey := fmt.Sprintf("gudang:token_denylist:%s", claims.TokenID)
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.cacheSvc.SetString(ctx, denyKey, "revoked", ttl); err != nil {
		log.Printf("Failed to denylist token: %v", err)
		return err
	}
	return nil
}

func (s *authService) IsTokenRevoked(ctx context.Context, tokenID string) bool {
	denyKey := fmt.Sprintf("gudang:token_denylist:%s", tokenID)
	val, err := s.cacheSvc.GetString(ctx, denyKey)
	if err != nil {
		// Cache down: fail open, the JWT expiry still bounds the damage.
		return false
	}
	return val != ""
}

// generateSecureToken generates a cryptographically secure random token
func (s *authService) generateSecureToken() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return base64.URLEncoding.EncodeToString(bytes)
}

// hashToken creates a SHA-256 hash of the token for storage lookups
func (s *authService) hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
