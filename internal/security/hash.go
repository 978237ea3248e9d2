package security

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashToken считает SHA-256 от строкового значения refresh-токена.
// В БД хранится только этот хэш, поэтому утечка таблицы не раскрывает токены.
func HashToken(rawToken string) string {
	digest := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(digest[:])
}
