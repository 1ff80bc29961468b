package rest

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rknpizza/counterboard/config"
)

const sessionCookie = "board_session"

// SessionAuth — статический пользователь стойки и HMAC-подписанная cookie.
// Значение cookie: base64(user|expiresUnix|hmac-sha256(user|expiresUnix)).
type SessionAuth struct {
	user     string
	password string
	secret   []byte
	ttl      time.Duration
}

func NewSessionAuth(cfg config.Auth) *SessionAuth {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionAuth{
		user:     cfg.User,
		password: cfg.Password,
		secret:   []byte(cfg.CookieSecret),
		ttl:      ttl,
	}
}

// Check — проверка логина и пароля (сравнение за постоянное время).
func (a *SessionAuth) Check(user, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(a.user)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	return userOK && passOK
}

// IssueToken — подписанный токен сессии со сроком действия.
func (a *SessionAuth) IssueToken(now time.Time) string {
	expires := now.Add(a.ttl).Unix()
	payload := fmt.Sprintf("%s|%d", a.user, expires)
	return base64.RawURLEncoding.EncodeToString([]byte(payload + "|" + a.sign(payload)))
}

// ValidToken — подпись сходится и срок не истёк.
func (a *SessionAuth) ValidToken(token string, now time.Time) bool {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return false
	}
	parts := strings.Split(string(raw), "|")
	if len(parts) != 3 {
		return false
	}
	payload := parts[0] + "|" + parts[1]
	if !hmac.Equal([]byte(a.sign(payload)), []byte(parts[2])) {
		return false
	}
	expires, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return false
	}
	return now.Unix() < expires
}

// TTL — срок жизни сессии.
func (a *SessionAuth) TTL() time.Duration { return a.ttl }

func (a *SessionAuth) sign(payload string) string {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Middleware — гейт для /api/*: без валидной cookie отдаём 401.
func (a *SessionAuth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookie)
		if err != nil || !a.ValidToken(token, time.Now()) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// login — POST /api/login: проверка статической пары и установка cookie.
func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}
	if !h.auth.Check(req.Username, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token := h.auth.IssueToken(time.Now())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, int(h.auth.TTL().Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}

// logout — POST /api/logout: сброс cookie.
func (h *Handler) logout(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"authenticated": false})
}
