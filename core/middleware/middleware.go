package middleware

import (
	"crypto/subtle"
	"net/http"
	"slices"
	"strconv"

	"booking-gateway/core/constants"
	"booking-gateway/core/controller"
	"booking-gateway/core/errors"
	"booking-gateway/core/logger"
	"booking-gateway/core/utils"
	"booking-gateway/modules/ratelimit/entity"
	"booking-gateway/modules/ratelimit/service"

	"github.com/labstack/echo/v4"
)

type Middleware struct {
	limiter  service.RateLimiter
	resolver utils.IdentityResolver
	admin    AdminPolicy
}

// AdminPolicy lists who may call operator routes: holders of Key in the
// X-Admin-Key header, or bearer tokens whose subject is in Subjects.
type AdminPolicy struct {
	Key      string
	Subjects []string
}

// NewMiddleware builds the request gates. A nil limiter disables admission
// checks; identities are still resolved.
func NewMiddleware(limiter service.RateLimiter, resolver utils.IdentityResolver) *Middleware {
	return &Middleware{limiter: limiter, resolver: resolver}
}

// WithAdmin sets the policy enforced by AdminMiddleware.
func (m *Middleware) WithAdmin(p AdminPolicy) *Middleware {
	m.admin = p
	return m
}

// AdminMiddleware rejects callers that are not operators: 401 without
// credentials, 403 with credentials that do not match the policy.
func (m *Middleware) AdminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			key := req.Header.Get(constants.HeaderAdminKey)
			bearer := req.Header.Get("Authorization")
			if key == "" && bearer == "" {
				return c.JSON(http.StatusUnauthorized,
					controller.NewErrorResponse(errors.ErrUnauthorized, "admin credentials required"))
			}

			if m.isAdmin(key, bearer) {
				return next(c)
			}

			logger.Warn("Middleware:Admin:Denied",
				"identity", utils.HashIdentity(m.resolver.Resolve(req)),
				"path", c.Path(),
			)
			return c.JSON(http.StatusForbidden,
				controller.NewErrorResponse(errors.ErrForbidden, "admin access denied"))
		}
	}
}

func (m *Middleware) isAdmin(key, bearer string) bool {
	if m.admin.Key != "" && key != "" &&
		subtle.ConstantTimeCompare([]byte(key), []byte(m.admin.Key)) == 1 {
		return true
	}
	if len(m.admin.Subjects) == 0 || len(m.resolver.JWTSecret) == 0 || bearer == "" {
		return false
	}
	sub, ok := utils.BearerSubject(bearer, m.resolver.JWTSecret)
	return ok && slices.Contains(m.admin.Subjects, sub)
}

type rateLimitedResponse struct {
	*controller.ErrorResponse
	RetryAfterMs int64 `json:"retryAfterMs"`
}

// RateLimitMiddleware admits or rejects the request before any handler work.
func (m *Middleware) RateLimitMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := m.resolver.Resolve(c.Request())
			c.Set(constants.ContextIdentity, identity)

			if m.limiter == nil {
				return next(c)
			}

			d := m.limiter.Admit(c.Request().Context(), identity)
			setRateLimitHeaders(c, d)
			if d.Allowed {
				return next(c)
			}

			status, code, msg := http.StatusTooManyRequests, errors.ErrRateLimited, "rate limit exceeded"
			if d.Degraded {
				status, code, msg = http.StatusServiceUnavailable, errors.ErrRateLimitUnavailable, "rate limiter unavailable"
			}
			logger.Info("Middleware:RateLimit:Denied",
				"identity", utils.HashIdentity(identity),
				"retry_after_ms", d.RetryAfterMs(),
				"degraded", d.Degraded,
				"path", c.Path(),
			)
			return c.JSON(status, rateLimitedResponse{
				ErrorResponse: controller.NewErrorResponse(code, msg),
				RetryAfterMs:  d.RetryAfterMs(),
			})
		}
	}
}

func setRateLimitHeaders(c echo.Context, d entity.Decision) {
	h := c.Response().Header()
	if d.Limit > 0 && !d.Degraded {
		h.Set(constants.HeaderRateLimitLimit, strconv.FormatInt(d.Limit, 10))
		h.Set(constants.HeaderRateLimitRemaining, strconv.FormatInt(d.Remaining, 10))
	}
	if !d.Allowed {
		secs := (d.RetryAfterMs() + 999) / 1000
		h.Set(constants.HeaderRetryAfter, strconv.FormatInt(secs, 10))
	}
}
