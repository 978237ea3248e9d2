package model

// RequestMeta : IP и User-Agent текущего запроса.
// Передаётся явным параметром из handler в сервис — без thread-local магии,
// метаданные нужны только для аудита и ключа rate limiter-а.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// LimiterKey собирает ключ rate limiter-а вида "ip|email".
// Пустой IP превращается в "unknown", чтобы ключ оставался различимым.
func (m RequestMeta) LimiterKey(email string) string {
	ip := m.IP
	if ip == "" {
		ip = "unknown"
	}
	return ip + "|" + email
}
