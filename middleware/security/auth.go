package security

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"collabhub/global"
	"collabhub/tools/errs"
)

const CtxTokenKey = "authorization"

type Options struct {
	HeaderToken               string // defaults to "authorization"
	EnableAuthorizationBearer bool   // accept "Authorization: Bearer xxx" too
}

func DefaultOptions() *Options {
	return &Options{
		HeaderToken:               CtxTokenKey,
		EnableAuthorizationBearer: true,
	}
}

// Middleware guards the internal REST surface. The CRUD layer authenticates
// with the shared internal token, not a user JWT; user identity never flows
// through these endpoints.
func Middleware(opts *Options) gin.HandlerFunc {
	if opts == nil {
		opts = DefaultOptions()
	}
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(opts.HeaderToken))

		if token == "" && opts.EnableAuthorizationBearer {
			if authz := strings.TrimSpace(c.GetHeader("Authorization")); authz != "" {
				if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
					token = strings.TrimSpace(authz[len("bearer "):])
				}
			}
		}

		// no configured token means the internal surface is closed
		if global.Conf.InternalToken == "" || token != global.Conf.InternalToken {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrTokenInvalid)
			return
		}

		c.Set(CtxTokenKey, token)
		c.Next()
	}
}
