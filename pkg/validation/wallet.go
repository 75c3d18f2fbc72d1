package validation

import (
	"regexp"
	"strings"

	apperrors "github.com/anime-shed/cccd-inspector-go/internal/errors"
)

var walletPattern = regexp.MustCompile(`^0x[0-9a-f]{40}$`)

// NormalizeWallet lower-cases a wallet address and checks it is 0x followed by 40 hex digits.
func NormalizeWallet(address string) (string, error) {
	wallet := strings.ToLower(strings.TrimSpace(address))
	if wallet == "" {
		return "", apperrors.NewValidationError("Wallet address is required", nil)
	}
	if !walletPattern.MatchString(wallet) {
		return "", apperrors.NewValidationError("Invalid wallet address", nil)
	}
	return wallet, nil
}
