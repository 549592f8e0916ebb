package utils

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/Kosench/keyed-url-shortener/internal/errors"
)

const MaxURLLength = 2048

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateURL checks that rawURL is an absolute http(s) URL with a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return apperrors.NewValidationError("target_url", "URL cannot be empty")
	}

	if len(rawURL) > MaxURLLength {
		return apperrors.NewValidationError("target_url",
			fmt.Sprintf("URL is too long (max %d characters)", MaxURLLength))
	}

	if err := validate.Var(rawURL, "url"); err != nil {
		return apperrors.NewValidationError("target_url", "invalid URL format")
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return apperrors.NewValidationError("target_url", fmt.Sprintf("invalid URL format: %v", err))
	}

	scheme := strings.ToLower(parsedURL.Scheme)
	if scheme != "http" && scheme != "https" {
		return apperrors.NewValidationError("target_url", "URL must start with http:// or https://")
	}

	if parsedURL.Hostname() == "" {
		return apperrors.NewValidationError("target_url", "URL must contain a valid host")
	}

	return nil
}

func SanitizeInput(input string) string {
	// drop control characters, keep whitespace for TrimSpace
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, input)

	return strings.TrimSpace(result)
}
