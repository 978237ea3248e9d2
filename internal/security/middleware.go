package security

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
)

// ErrForbidden : у пользователя нет роли, требуемой операцией
var ErrForbidden = errors.New("доступ запрещён")

type contextKey string

const (
	UserContextKey contextKey = "user"
)

// JWTMiddleware проверяет Bearer access-токен и кладёт клеймы в контекст запроса
func JWTMiddleware(tokenService *TokenService) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authorizationHeader := request.Header.Get("Authorization")
			if !strings.HasPrefix(authorizationHeader, "Bearer ") {
				http.Error(writer, "unauthorized", http.StatusUnauthorized)
				return
			}

			token := strings.TrimPrefix(authorizationHeader, "Bearer ")

			claims, err := tokenService.ValidateAccessToken(token)
			if err != nil {
				log.Printf("невалидный токен: %v", err)
				http.Error(writer, "unauthorized", http.StatusUnauthorized)
				return
			}

			req := request.WithContext(context.WithValue(request.Context(), UserContextKey, claims))
			next.ServeHTTP(writer, req)
		})
	}
}

// RequireRole пускает дальше только пользователей с одной из перечисленных ролей.
// Ставится после JWTMiddleware. Явная проверка вместо аннотаций и рефлексии:
// требуемые роли видны прямо в месте подключения маршрута.
func RequireRole(roles ...string) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims, err := GetClaimsFromContext(request.Context())
			if err != nil {
				http.Error(writer, "unauthorized", http.StatusUnauthorized)
				return
			}

			if err := EnsureRole(claims, roles...); err != nil {
				http.Error(writer, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// EnsureRole возвращает ErrForbidden, если роль из клеймов не входит в список
func EnsureRole(claims *Claims, roles ...string) error {
	for _, role := range roles {
		if claims.Role == role {
			return nil
		}
	}
	return ErrForbidden
}

func GetClaimsFromContext(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(UserContextKey).(*Claims)
	if !ok || claims == nil {
		return nil, errors.New("пользователь не авторизован")
	}
	return claims, nil
}
