package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"brokerage-backoffice/internal/model"
	"brokerage-backoffice/internal/ports"
	"brokerage-backoffice/internal/repository"
	"brokerage-backoffice/internal/security"
)

var (
	// ErrInvalidCredentials : неизвестный email, неактивная учётка или неверный
	// пароль — снаружи неразличимы, чтобы не подсказывать перебору.
	ErrInvalidCredentials = errors.New("неверный логин или пароль")

	// ErrTooManyAttempts : ключ ip|email заблокирован rate limiter-ом
	ErrTooManyAttempts = errors.New("слишком много попыток входа")
)

// issuerMarker добавляется в extra-клеймы access-токена; зарезервированный
// iss кодек не перетирает, так что это чисто маркер сервиса-эмитента.
const issuerMarker = "brokerage-backoffice"

const reasonPasswordChange = "password_change"

type AuthenticationService struct {
	userRepository   ports.UserRepositoryInterface
	tokenService     ports.TokenServiceInterface
	refreshTokenRepo ports.RefreshTokenRepositoryInterface
	auditLog         ports.AuditLogInterface
	rateLimiter      ports.LoginRateLimiterInterface
	passwordPolicy   ports.PasswordPolicyInterface
}

func NewAuthenticationService(
	userRepository ports.UserRepositoryInterface,
	tokenService ports.TokenServiceInterface,
	refreshTokenRepo ports.RefreshTokenRepositoryInterface,
	auditLog ports.AuditLogInterface,
	rateLimiter ports.LoginRateLimiterInterface,
	passwordPolicy ports.PasswordPolicyInterface,
) *AuthenticationService {
	return &AuthenticationService{
		userRepository:   userRepository,
		tokenService:     tokenService,
		refreshTokenRepo: refreshTokenRepo,
		auditLog:         auditLog,
		rateLimiter:      rateLimiter,
		passwordPolicy:   passwordPolicy,
	}
}

// Login аутентифицирует пользователя по email и паролю.
// Порядок жёсткий: сначала rate limiter (до обращения к БД), затем проверка
// учётки, затем выпуск и сохранение токенов. Каждый исход — ровно одна
// запись аудита: LOGIN_RATE_LIMIT, LOGIN_FAILED или LOGIN_SUCCESS.
func (s *AuthenticationService) Login(ctx context.Context, email string, password string, meta model.RequestMeta) (*model.AuthResult, error) {
	now := time.Now().UTC()
	key := meta.LimiterKey(email)

	if !s.rateLimiter.Allow(ctx, key) {
		s.audit(ctx, &model.AuditEntry{
			OccurredAt: now,
			Action:     model.AuditLoginRateLimit,
			Subject:    email,
			IP:         meta.IP,
			UserAgent:  meta.UserAgent,
		})
		return nil, ErrTooManyAttempts
	}

	result, err := s.doLogin(ctx, email, password, key, now)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.audit(ctx, &model.AuditEntry{
				OccurredAt: now,
				Action:     model.AuditLoginFailed,
				Subject:    email,
				IP:         meta.IP,
				UserAgent:  meta.UserAgent,
			})
		}
		return nil, err
	}

	s.audit(ctx, &model.AuditEntry{
		OccurredAt: now,
		UserID:     &result.UserID,
		Action:     model.AuditLoginSuccess,
		Subject:    email,
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
		Metadata:   map[string]interface{}{"role": result.Role},
	})

	return result, nil
}

func (s *AuthenticationService) doLogin(ctx context.Context, email string, password string, key string, now time.Time) (*model.AuthResult, error) {
	user, err := s.userRepository.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("ошибка поиска пользователя: %w", err)
	}

	if !user.Active || !security.CheckPassword(password, user.PasswordHash) {
		s.rateLimiter.RecordFailure(ctx, key)
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.tokenService.GenerateAccessToken(user.ID, user.Email, user.Role, map[string]interface{}{"iss": issuerMarker}, now)
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации access токена: %w", err)
	}

	refreshToken, jti, expiresAt, err := s.tokenService.GenerateRefreshToken(user.ID, now)
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации refresh токена: %w", err)
	}

	if err := s.refreshTokenRepo.Persist(ctx, user.ID, security.HashToken(refreshToken), jti, expiresAt); err != nil {
		return nil, fmt.Errorf("ошибка сохранения refresh токена: %w", err)
	}

	s.rateLimiter.RecordSuccess(ctx, key)

	return &model.AuthResult{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh обменивает живой refresh-токен на новую пару токенов.
// Повторно предъявленный (уже ротированный) токен найдётся в хранилище
// отозванным и будет отвергнут — это и есть детектор кражи токена.
func (s *AuthenticationService) Refresh(ctx context.Context, refreshToken string, meta model.RequestMeta) (*model.AuthResult, error) {
	now := time.Now().UTC()

	result, err := s.doRefresh(ctx, refreshToken, now)
	if err != nil {
		if errors.Is(err, security.ErrTokenInvalid) {
			s.audit(ctx, &model.AuditEntry{
				OccurredAt: now,
				Action:     model.AuditRefreshFailed,
				IP:         meta.IP,
				UserAgent:  meta.UserAgent,
			})
		}
		return nil, err
	}

	s.audit(ctx, &model.AuditEntry{
		OccurredAt: now,
		UserID:     &result.UserID,
		Action:     model.AuditRefreshSuccess,
		Subject:    result.Email,
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
	})

	return result, nil
}

func (s *AuthenticationService) doRefresh(ctx context.Context, refreshToken string, now time.Time) (*model.AuthResult, error) {
	claims, err := s.tokenService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, security.ErrTokenInvalid
	}

	oldHash := security.HashToken(refreshToken)
	stored, err := s.refreshTokenRepo.FindByHash(ctx, oldHash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, security.ErrTokenInvalid
		}
		return nil, fmt.Errorf("ошибка поиска refresh токена: %w", err)
	}

	// jti в токене обязан совпадать с jti записи: подпись без записи
	// в хранилище (или с чужой записью) ничего не значит
	if stored.JTI != claims.ID {
		return nil, security.ErrTokenInvalid
	}

	if !stored.Live(now) {
		return nil, security.ErrTokenInvalid
	}

	newToken, newJTI, newExpiry, err := s.tokenService.GenerateRefreshToken(stored.UserID, now)
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации refresh токена: %w", err)
	}

	if err := s.refreshTokenRepo.Rotate(ctx, oldHash, security.HashToken(newToken), newJTI, now, newExpiry); err != nil {
		// проигрыш гонки за один и тот же токен выглядит как повторное использование
		if errors.Is(err, repository.ErrNotFound) {
			return nil, security.ErrTokenInvalid
		}
		return nil, fmt.Errorf("ошибка ротации refresh токена: %w", err)
	}

	// роль могла поменяться с момента выдачи — перечитываем пользователя
	user, err := s.userRepository.FindByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, security.ErrTokenInvalid
		}
		return nil, fmt.Errorf("ошибка поиска пользователя: %w", err)
	}
	if !user.Active {
		return nil, security.ErrTokenInvalid
	}

	accessToken, err := s.tokenService.GenerateAccessToken(user.ID, user.Email, user.Role, map[string]interface{}{"iss": issuerMarker}, now)
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации access токена: %w", err)
	}

	return &model.AuthResult{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		AccessToken:  accessToken,
		RefreshToken: newToken,
	}, nil
}

// ChangePassword меняет пароль и отзывает все refresh-токены пользователя,
// чтобы украденная до смены пароля сессия не пережила её.
func (s *AuthenticationService) ChangePassword(ctx context.Context, userID int64, currentPassword string, newPassword string, meta model.RequestMeta) error {
	now := time.Now().UTC()

	user, err := s.userRepository.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("ошибка поиска пользователя: %w", err)
	}

	if !security.CheckPassword(currentPassword, user.PasswordHash) {
		s.audit(ctx, &model.AuditEntry{
			OccurredAt: now,
			UserID:     &userID,
			Action:     model.AuditPasswordChangeFailed,
			Subject:    user.Email,
			IP:         meta.IP,
			UserAgent:  meta.UserAgent,
			Metadata:   map[string]interface{}{"reason": "mismatch"},
		})
		return ErrInvalidCredentials
	}

	// ошибка политики уходит наружу как есть, с причиной
	if err := s.passwordPolicy.Validate(newPassword); err != nil {
		return err
	}

	newHash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("не удалось создать хэш пароля: %w", err)
	}

	if err := s.userRepository.UpdatePassword(ctx, userID, newHash, false); err != nil {
		return fmt.Errorf("не удалось обновить пароль: %w", err)
	}

	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID, reasonPasswordChange, now); err != nil {
		return fmt.Errorf("не удалось отозвать токены пользователя: %w", err)
	}

	s.audit(ctx, &model.AuditEntry{
		OccurredAt: now,
		UserID:     &userID,
		Action:     model.AuditPasswordChangeSuccess,
		Subject:    user.Email,
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
	})

	return nil
}

// audit пишет событие и глотает ошибку: журнал не должен ронять операцию
func (s *AuthenticationService) audit(ctx context.Context, entry *model.AuditEntry) {
	if err := s.auditLog.Record(ctx, entry); err != nil {
		log.Printf("не удалось записать событие аудита %s: %v", entry.Action, err)
	}
}
