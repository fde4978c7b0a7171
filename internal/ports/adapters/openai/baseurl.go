package openai

import (
	"fmt"
	"net/url"
	"strings"
)

const DefaultBaseURL = "https://api.openai.com/v1"

var defaultAllowedHosts = map[string]struct{}{
	"api.openai.com":    {},
	"openrouter.ai":     {},
	"api.openrouter.ai": {},
}

func normalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return strings.TrimRight(baseURL, "/")
}

// ValidateBaseURL accepts only absolute https URLs whose host is on the
// allow-list. An empty list means the built-in hosts.
func ValidateBaseURL(baseURL string, allowedHosts []string) error {
	baseURL = normalizeBaseURL(baseURL)

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid llm.remote.base_url: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("invalid llm.remote.base_url %q: absolute URL with host is required", baseURL)
	}
	if u.User != nil {
		return fmt.Errorf("invalid llm.remote.base_url %q: userinfo is not allowed", baseURL)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("invalid llm.remote.base_url %q: query and fragment are not allowed", baseURL)
	}
	if !strings.EqualFold(u.Scheme, "https") {
		return fmt.Errorf("invalid llm.remote.base_url %q: https is required", baseURL)
	}

	host := strings.ToLower(u.Hostname())
	if _, ok := normalizeAllowedHosts(allowedHosts)[host]; !ok {
		return fmt.Errorf("invalid llm.remote.base_url %q: host %q is not in llm.remote.allowed_hosts", baseURL, host)
	}
	return nil
}

func normalizeAllowedHosts(allowedHosts []string) map[string]struct{} {
	out := make(map[string]struct{}, len(allowedHosts))
	for _, h := range allowedHosts {
		v := strings.ToLower(strings.TrimSpace(h))
		v = strings.TrimPrefix(v, "http://")
		v = strings.TrimPrefix(v, "https://")
		v = strings.Trim(v, "/")
		if i := strings.Index(v, ":"); i >= 0 {
			v = v[:i]
		}
		if v != "" {
			out[v] = struct{}{}
		}
	}
	if len(out) == 0 {
		return defaultAllowedHosts
	}
	return out
}
