package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/NEPJU/APIs/internal/model"
	"github.com/NEPJU/APIs/internal/service"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "requestID"
	userKey         = "user"
	sessionCookie   = "session"
)

// RequestID tags every request with an id, reusing one the client sent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	if id := c.GetString(requestIDKey); id != "" {
		return id
	}
	return "-"
}

func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, PUT, POST, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// bearerToken reads the Authorization header, falling back to the session
// cookie set at login.
func bearerToken(c *gin.Context) string {
	if ah := c.GetHeader("Authorization"); strings.HasPrefix(ah, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(ah, "Bearer "))
	}
	if v, err := c.Cookie(sessionCookie); err == nil {
		return v
	}
	return ""
}

// Auth resolves the caller's token against the users table and stores the
// user on the context.
func Auth(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearerToken(c)
		if tok == "" {
			fail(c, &service.Error{Kind: service.ErrAuth, Message: "login required"})
			return
		}
		u, err := auth.Authenticate(c.Request.Context(), tok)
		if err != nil {
			fail(c, err)
			return
		}
		c.Set(userKey, u)
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if u, ok := currentUser(c); !ok || u.Role != model.RoleAdmin {
			fail(c, &service.Error{Kind: service.ErrAuth, Message: "admin access required"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) (model.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return model.User{}, false
	}
	u, ok := v.(model.User)
	return u, ok
}

// sameMember allows the request when the caller is memberID or an admin.
func sameMember(c *gin.Context, memberID uint) bool {
	u, ok := currentUser(c)
	if ok && (u.ID == memberID || u.Role == model.RoleAdmin) {
		return true
	}
	fail(c, &service.Error{Kind: service.ErrAuth, Message: "not allowed for this member"})
	return false
}

// RateLimiter allows limit requests per client IP and period, counted in
// Redis. A nil client or a Redis error lets the request through.
func RateLimiter(rdb *redis.Client, scope string, limit int, period time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		key := fmt.Sprintf("rate_limit:%s:%s", scope, c.ClientIP())

		pipe := rdb.TxPipeline()
		incr := pipe.Incr(ctx, key)
		ttl := pipe.TTL(ctx, key)
		if _, err := pipe.Exec(ctx); err != nil {
			log.Printf("[%s] rate limit: %v", requestID(c), err)
			c.Next()
			return
		}
		// no TTL: either a fresh key or an earlier EXPIRE that failed
		if ttl.Val() < 0 {
			if err := rdb.Expire(ctx, key, period).Err(); err != nil {
				log.Printf("[%s] rate limit expire: %v", requestID(c), err)
			}
		}
		if incr.Val() > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests"})
			return
		}
		c.Next()
	}
}
