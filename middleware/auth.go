package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/deltatracker/config"
	"github.com/cppla/deltatracker/utils"
)

// ContextClaimsKey stores the parsed *utils.Claims inside the gin context.
const ContextClaimsKey = "claims"

// AuthRequired ensures the request carries a valid bearer token. With auth
// disabled the tracker is a local single-user service and every request passes.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !config.Get().AuthEnabled {
			ctx.Next()
			return
		}

		tokenString, code, msg := bearerToken(ctx.GetHeader("Authorization"))
		if code != 0 {
			utils.Abort(ctx, http.StatusUnauthorized, code, msg)
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.Abort(ctx, http.StatusUnauthorized, 40105, "invalid token")
			return
		}
		if utils.IsTokenRevoked(claims.ID) {
			utils.Abort(ctx, http.StatusUnauthorized, 40104, "token revoked")
			return
		}

		ctx.Set(ContextClaimsKey, claims)
		ctx.Next()
	}
}

// ClaimsFrom returns the claims set by AuthRequired, nil with auth disabled.
func ClaimsFrom(ctx *gin.Context) *utils.Claims {
	v, ok := ctx.Get(ContextClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*utils.Claims)
	return claims
}

func bearerToken(header string) (string, int, string) {
	if header == "" {
		return "", 40101, "authorization header missing"
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", 40102, "invalid authorization header format"
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", 40103, "empty bearer token"
	}
	return token, 0, ""
}
