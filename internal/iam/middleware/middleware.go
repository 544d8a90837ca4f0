package middleware

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"garaadka-laundry/internal/audit"
	"garaadka-laundry/internal/iam/domain/model"
	"garaadka-laundry/internal/infra/jwt"
	"garaadka-laundry/internal/pkg/rest_err"
)

const (
	tokenCacheTTL     = 30 * time.Second
	tokenCacheCleanup = time.Minute
)

type Middleware interface {
	VerifyToken() gin.HandlerFunc
	OptionalAuth() gin.HandlerFunc
	RequireRole(positions ...model.Position) gin.HandlerFunc
	AuditUser() gin.HandlerFunc
	// Forget drops a cached token lookup, e.g. after logout.
	Forget(token string)
}

type impl struct {
	repository Repository
	tokens     *jwt.TokenGenerator
	cache      *cache.Cache
	logger     *zap.Logger
	now        func() time.Time
}

func NewMiddleware(repository Repository, tokens *jwt.TokenGenerator, logger *zap.Logger) Middleware {
	return &impl{
		repository: repository,
		tokens:     tokens,
		cache:      cache.New(tokenCacheTTL, tokenCacheCleanup),
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (mw *impl) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		login, restErr := mw.authenticate(c)
		if restErr != nil {
			c.AbortWithStatusJSON(restErr.Code, restErr)
			return
		}
		SetAuthenticatedUser(c, login)
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and
// continues anonymously otherwise.
func (mw *impl) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if extractBearerToken(c.GetHeader("Authorization")) != "" {
			if login, restErr := mw.authenticate(c); restErr == nil {
				SetAuthenticatedUser(c, login)
			}
		}
		c.Next()
	}
}

func (mw *impl) RequireRole(positions ...model.Position) gin.HandlerFunc {
	return func(c *gin.Context) {
		lUser, ok := GetAuthenticatedUser(c)
		if !ok {
			e := rest_err.NewUnauthorizedError("Authentication required")
			c.AbortWithStatusJSON(e.Code, e)
			return
		}

		if !isPositionAuthorized(lUser.User.Position, positions) {
			e := rest_err.NewForbiddenError("Insufficient permissions")
			c.AbortWithStatusJSON(e.Code, e)
			return
		}

		c.Next()
	}
}

// AuditUser resolves the acting user for audit rows: username, then user id,
// then the X-User-ID header, then "anonymous". It never aborts.
func (mw *impl) AuditUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := "anonymous"
		if login, ok := GetAuthenticatedUser(c); ok {
			switch {
			case login.User.Username != "":
				user = login.User.Username
			case login.User.ID != 0:
				user = strconv.FormatUint(uint64(login.User.ID), 10)
			}
		} else if header := c.GetHeader("X-User-ID"); header != "" {
			user = header
		}
		c.Set(audit.AuditUserKey, user)
		c.Next()
	}
}

func (mw *impl) Forget(token string) {
	mw.cache.Delete(token)
}

func (mw *impl) authenticate(c *gin.Context) (*Login, *rest_err.RestErr) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" {
		return nil, rest_err.NewUnauthorizedError("Access token required")
	}

	claims, err := mw.tokens.Parse(token)
	if err != nil {
		return nil, rest_err.NewUnauthorizedError("Invalid or expired token")
	}

	login, err := mw.lookup(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, ErrTokenNotFound) {
			mw.logger.Error("token lookup failed", zap.Error(err))
		}
		return nil, rest_err.NewUnauthorizedError("Invalid or expired token")
	}

	if !mw.now().Before(login.AccessToken.Expiry) {
		return nil, rest_err.NewUnauthorizedError("Token has been revoked")
	}
	if !login.User.Active {
		return nil, rest_err.NewUnauthorizedError("Account is disabled")
	}
	if claims.Subject != strconv.FormatUint(uint64(login.User.ID), 10) {
		return nil, rest_err.NewUnauthorizedError("Invalid or expired token")
	}

	login.Claims = claims
	return login, nil
}

// lookup returns a private copy so handlers cannot mutate the cached value.
func (mw *impl) lookup(ctx context.Context, token string) (*Login, error) {
	if cached, ok := mw.cache.Get(token); ok {
		l := *cached.(*Login)
		return &l, nil
	}

	login, err := mw.repository.GetLogin(ctx, token)
	if err != nil {
		return nil, err
	}
	mw.cache.SetDefault(token, login)

	l := *login
	return &l, nil
}

func isPositionAuthorized(position model.Position, allowed []model.Position) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, p := range allowed {
		if position == p {
			return true
		}
	}
	return false
}
