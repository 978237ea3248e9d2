package requestresponse

// LoginRequest : тело запроса на аутентификацию.
// Поле пароля называется senha — контракт унаследован от мобильного клиента.
type LoginRequest struct {
	Email string `json:"email" example:"admin@x.com"`
	Senha string `json:"senha" example:"Admin@123"`
}

// AuthResponse : ответ на успешный логин или обновление токенов
type AuthResponse struct {
	UserID       int64  `json:"userId" example:"42"`
	Email        string `json:"email" example:"admin@x.com"`
	Role         string `json:"role" example:"ADMIN"`
	AccessToken  string `json:"accessToken" example:"eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string `json:"refreshToken" example:"eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9..."`
}

// RefreshTokenRequest : запрос на обновление пары токенов
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" example:"eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9..."`
}

// ChangePasswordRequest : запрос на смену пароля текущего пользователя
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" example:"Admin@123"`
	NewPassword     string `json:"newPassword" example:"N0vaSenha#Forte12"`
}

// CurrentUserResponse : информация о текущем пользователе
type CurrentUserResponse struct {
	UserID int64  `json:"userId" example:"42"`
	Email  string `json:"email" example:"admin@x.com"`
	Role   string `json:"role" example:"ADMIN"`
}

// ErrorResponse : единый формат ошибки
type ErrorResponse struct {
	Error   string `json:"error" example:"Unauthorized"`
	Message string `json:"message" example:"неверный логин или пароль"`
	Code    int    `json:"code" example:"401"`
}
