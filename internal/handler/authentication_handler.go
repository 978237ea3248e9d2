package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"

	"brokerage-backoffice/internal/model"
	"brokerage-backoffice/internal/model/requestresponse"
	"brokerage-backoffice/internal/ports"
	"brokerage-backoffice/internal/security"
	"brokerage-backoffice/internal/service"
	"brokerage-backoffice/internal/util"
)

type AuthenticationHandler struct {
	authenticationService ports.AuthenticationService
}

func NewAuthenticationHandler(authenticationService ports.AuthenticationService) *AuthenticationHandler {
	return &AuthenticationHandler{authenticationService}
}

// Login godoc
// @Summary Аутентификация пользователя
// @Description Получение пары access/refresh токенов по email и паролю
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.LoginRequest true "Тело запроса"
// @Success 200 {object} requestresponse.AuthResponse "Успешная аутентификация"
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректный JSON или пустые поля"
// @Failure 401 {object} requestresponse.ErrorResponse "Неверный логин или пароль"
// @Failure 429 {object} requestresponse.ErrorResponse "Слишком много попыток входа"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/login [post]
func (h *AuthenticationHandler) Login(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	var req requestresponse.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.HandleError(w, "некорректный JSON", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Senha == "" {
		util.HandleError(w, "email и senha обязательны", http.StatusBadRequest)
		return
	}

	result, err := h.authenticationService.Login(ctx, req.Email, req.Senha, requestMeta(r))
	if err != nil {
		log.Println(err)
		switch {
		case errors.Is(err, service.ErrTooManyAttempts):
			util.HandleError(w, "слишком много попыток входа, попробуйте позже", http.StatusTooManyRequests)
		case errors.Is(err, service.ErrInvalidCredentials):
			util.HandleError(w, "неверный логин или пароль", http.StatusUnauthorized)
		default:
			util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(authResponse(result))
}

// RefreshToken godoc
// @Summary Обновление токенов
// @Description Обменивает действующий refresh-токен на новую пару токенов; старый токен отзывается
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.RefreshTokenRequest true "Тело запроса"
// @Success 200 {object} requestresponse.AuthResponse "Новая пара токенов"
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный JSON"
// @Failure 401 {object} requestresponse.ErrorResponse "Невалидный, просроченный или уже использованный токен"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/refresh [post]
func (h *AuthenticationHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	var req requestresponse.RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.HandleError(w, "неверный JSON", http.StatusBadRequest)
		return
	}

	if req.RefreshToken == "" {
		util.HandleError(w, "refreshToken обязателен", http.StatusBadRequest)
		return
	}

	result, err := h.authenticationService.Refresh(ctx, req.RefreshToken, requestMeta(r))
	if err != nil {
		log.Println(err)
		if errors.Is(err, security.ErrTokenInvalid) {
			util.HandleError(w, "не удалось обновить токены", http.StatusUnauthorized)
		} else {
			util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(authResponse(result))
}

// ChangePassword godoc
// @Summary Смена пароля текущего пользователя
// @Description Проверяет текущий пароль, применяет политику сложности и отзывает все refresh-токены пользователя
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.ChangePasswordRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 204 "Пароль изменён"
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный JSON или слабый пароль"
// @Failure 401 {object} requestresponse.ErrorResponse "Текущий пароль не подошёл"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /auth/change-password [post]
func (h *AuthenticationHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		util.HandleError(w, "не авторизован", http.StatusUnauthorized)
		return
	}

	userID, err := claims.UserID()
	if err != nil {
		util.HandleError(w, "не авторизован", http.StatusUnauthorized)
		return
	}

	var req requestresponse.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.HandleError(w, "неверный JSON", http.StatusBadRequest)
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		util.HandleError(w, "currentPassword и newPassword обязательны", http.StatusBadRequest)
		return
	}

	if err := h.authenticationService.ChangePassword(ctx, userID, req.CurrentPassword, req.NewPassword, requestMeta(r)); err != nil {
		log.Println(err)
		switch {
		case errors.Is(err, security.ErrWeakPassword):
			util.HandleError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, service.ErrInvalidCredentials):
			util.HandleError(w, "неверный текущий пароль", http.StatusUnauthorized)
		default:
			util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetCurrentUser godoc
// @Summary Текущий пользователь
// @Description Возвращает идентификатор, email и роль из access-токена
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.CurrentUserResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /auth/me [get]
func (h *AuthenticationHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims, err := security.GetClaimsFromContext(r.Context())
	if err != nil {
		util.HandleError(w, "не авторизован", http.StatusUnauthorized)
		return
	}

	userID, err := claims.UserID()
	if err != nil {
		util.HandleError(w, "не авторизован", http.StatusUnauthorized)
		return
	}

	resp := requestresponse.CurrentUserResponse{
		UserID: userID,
		Email:  claims.Email,
		Role:   claims.Role,
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

func authResponse(result *model.AuthResult) requestresponse.AuthResponse {
	return requestresponse.AuthResponse{
		UserID:       result.UserID,
		Email:        result.Email,
		Role:         result.Role,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}
}

// requestMeta собирает IP и User-Agent запроса для аудита и ключа limiter-а
func requestMeta(r *http.Request) model.RequestMeta {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	}

	return model.RequestMeta{
		IP:        ip,
		UserAgent: r.UserAgent(),
	}
}
