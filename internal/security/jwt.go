package security

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"brokerage-backoffice/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrTokenInvalid : единственная ошибка, которую кодек отдаёт наружу.
// Битая подпись, чужой issuer/audience, неверный typ, просроченный токен —
// снаружи всё выглядит одинаково, причина отказа не раскрывается.
var ErrTokenInvalid = errors.New("невалидный токен")

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type Claims struct {
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// UserID возвращает subject токена как числовой идентификатор пользователя
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrTokenInvalid
	}
	return id, nil
}

type TokenService struct {
	issuer     string
	audience   string
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(cfg *config.JWTConfig) (*TokenService, error) {
	accessTTL, err := time.ParseDuration(cfg.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга access_token_ttl: %w", err)
	}

	refreshTTL, err := time.ParseDuration(cfg.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга refresh_token_ttl: %w", err)
	}

	return &TokenService{
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		secretKey:  []byte(cfg.SecretKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// GenerateAccessToken выпускает подписанный access-токен.
// extraClaims добавляются к стандартным, но не могут перетереть
// зарезервированные (iss, aud, sub, exp, iat, typ, email, role).
func (service *TokenService) GenerateAccessToken(userID int64, email string, role string, extraClaims map[string]interface{}, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"iss":   service.issuer,
		"aud":   service.audience,
		"sub":   strconv.FormatInt(userID, 10),
		"iat":   jwt.NewNumericDate(now),
		"exp":   jwt.NewNumericDate(now.Add(service.accessTTL)),
		"typ":   tokenTypeAccess,
		"email": email,
		"role":  role,
	}
	for key, value := range extraClaims {
		if _, reserved := claims[key]; !reserved {
			claims[key] = value
		}
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := jwtToken.SignedString(service.secretKey)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}

	return signed, nil
}

// GenerateRefreshToken выпускает refresh-токен с новым jti.
// Каждый вызов порождает новый jti — при ротации старый никогда не переиспользуется.
func (service *TokenService) GenerateRefreshToken(userID int64, now time.Time) (string, string, time.Time, error) {
	jti := uuid.New().String()
	expiresAt := now.Add(service.refreshTTL)

	claims := Claims{
		TokenType: tokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    service.issuer,
			Audience:  jwt.ClaimStrings{service.audience},
			Subject:   strconv.FormatInt(userID, 10),
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := jwtToken.SignedString(service.secretKey)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("ошибка подписи токена: %w", err)
	}

	return signed, jti, expiresAt, nil
}

// ValidateAccessToken проверяет подпись и клеймы access-токена
func (service *TokenService) ValidateAccessToken(jwtTokenStr string) (*Claims, error) {
	return service.validate(jwtTokenStr, tokenTypeAccess)
}

// ValidateRefreshToken проверяет подпись и клеймы refresh-токена
func (service *TokenService) ValidateRefreshToken(jwtTokenStr string) (*Claims, error) {
	return service.validate(jwtTokenStr, tokenTypeRefresh)
}

func (service *TokenService) validate(jwtTokenStr string, expectedType string) (*Claims, error) {
	var claims = &Claims{}

	jwtToken, err := jwt.ParseWithClaims(jwtTokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Header["alg"] != jwt.SigningMethodHS512.Alg() {
			return nil, fmt.Errorf("неверный способ подписи токена: %v", token.Header["alg"])
		}
		return service.secretKey, nil
	})

	if err != nil || !jwtToken.Valid {
		log.Printf("невалидный токен: %v", err)
		return nil, ErrTokenInvalid
	}

	if claims.TokenType != expectedType {
		log.Printf("невалидный токен: typ %q вместо %q", claims.TokenType, expectedType)
		return nil, ErrTokenInvalid
	}

	if claims.Issuer != service.issuer {
		log.Printf("невалидный токен: чужой issuer %q", claims.Issuer)
		return nil, ErrTokenInvalid
	}

	// audience сверяется строго: ровно одно значение, равное нашему
	if len(claims.Audience) != 1 || claims.Audience[0] != service.audience {
		log.Printf("невалидный токен: чужой audience %v", claims.Audience)
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
