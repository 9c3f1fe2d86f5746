package auth

import (
	"strings"

	apperrors "github.com/consensuslabs/pavilion-mint/internal/errors"
	"github.com/gin-gonic/gin"
)

// WalletAddressKey is the gin context key holding the connected address
const WalletAddressKey = "walletAddress"

// WalletMiddleware resolves the connected wallet from a bearer token.
// A missing or invalid token leaves the request without a wallet.
func WalletMiddleware(service *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.Next()
			return
		}

		address, err := service.ValidateToken(strings.TrimSpace(parts[1]))
		if err == nil {
			c.Set(WalletAddressKey, address)
		}
		c.Next()
	}
}

// RequireWallet aborts with 401 when no wallet is connected
func RequireWallet(responseHandler ResponseHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetWalletAddress(c); !ok {
			responseHandler.UnauthorizedResponse(c, apperrors.ErrMsgWalletRequired)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetWalletAddress returns the connected wallet address, if any
func GetWalletAddress(c *gin.Context) (string, bool) {
	address := c.GetString(WalletAddressKey)
	return address, address != ""
}
