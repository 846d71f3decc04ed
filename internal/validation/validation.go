package validation

import (
	"net/url"
	"strings"
)

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}

// ValidateSecureURL is ValidateURL restricted to https. Used for endpoints that receive credentials.
func ValidateSecureURL(urlStr string) (bool, string) {
	if valid, msg := ValidateURL(urlStr); !valid {
		return false, msg
	}
	u, _ := url.Parse(urlStr)
	if !strings.EqualFold(u.Scheme, "https") {
		return false, "URL must use https:// scheme"
	}
	return true, ""
}
