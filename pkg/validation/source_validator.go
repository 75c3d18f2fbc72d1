package validation

import (
	"net/url"
	"strings"

	apperrors "github.com/anime-shed/cccd-inspector-go/internal/errors"
)

// SourceValidator checks image references before anything is fetched.
type SourceValidator struct {
	allowedSchemes []string
	allowedHosts   []string
}

// NewSourceValidator accepts http, https and azblob references from any host.
func NewSourceValidator() *SourceValidator {
	return &SourceValidator{
		allowedSchemes: []string{"http", "https", "azblob"},
		allowedHosts:   []string{}, // empty means all hosts allowed
	}
}

// NewSourceValidatorWithOptions creates a validator with custom schemes and hosts.
// For azblob references the host is the container name.
func NewSourceValidatorWithOptions(schemes []string, hosts []string) *SourceValidator {
	return &SourceValidator{
		allowedSchemes: schemes,
		allowedHosts:   hosts,
	}
}

// ValidateSource validates an image reference and returns its scheme.
func (v *SourceValidator) ValidateSource(ref string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		return "", apperrors.NewValidationError("URL cannot be empty", nil)
	}

	parsed, err := url.Parse(ref)
	if err != nil {
		return "", apperrors.NewValidationError("Invalid URL format", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if !contains(v.allowedSchemes, scheme) {
		return "", apperrors.NewValidationError("URL scheme not allowed", nil)
	}

	if parsed.Host == "" {
		return "", apperrors.NewValidationError("URL must have a valid host", nil)
	}

	if scheme == "azblob" && strings.Trim(parsed.Path, "/") == "" {
		return "", apperrors.NewValidationError("blob reference must name a blob", nil)
	}

	if len(v.allowedHosts) > 0 && !contains(v.allowedHosts, parsed.Host) {
		return "", apperrors.NewValidationError("URL host not allowed", nil)
	}

	return scheme, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
