package validate

import (
	"net"
	"net/url"
	"regexp"
	"sync"
	"time"

	"github.com/goliatone/go-confwizard/pkg/model"
)

var (
	patternMu    sync.RWMutex
	patternCache = make(map[string]*regexp.Regexp)
)

func matchPattern(pattern, value string) (bool, error) {
	patternMu.RLock()
	compiled, ok := patternCache[pattern]
	patternMu.RUnlock()

	if !ok {
		var err error
		compiled, err = regexp.Compile(pattern)
		if err != nil {
			return false, err
		}
		patternMu.Lock()
		patternCache[pattern] = compiled
		patternMu.Unlock()
	}
	return compiled.MatchString(value), nil
}

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	uuidPattern  = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// checkFormat enforces the string formats preserved from the source schema.
// Unknown formats pass; format checks are advisory refinements on top of the
// kind system, matching the source granularity (email, uuid, ipv4, ...).
func checkFormat(field model.Field, value string) *FieldError {
	switch field.Format {
	case "email":
		if !emailPattern.MatchString(value) {
			return violated(field, "must be a valid email address")
		}
	case "uuid":
		if !uuidPattern.MatchString(value) {
			return violated(field, "must be a valid UUID")
		}
	case "ipv4":
		ip := net.ParseIP(value)
		if ip == nil || ip.To4() == nil {
			return violated(field, "must be a valid IPv4 address")
		}
	case "ipv6":
		ip := net.ParseIP(value)
		if ip == nil || ip.To4() != nil {
			return violated(field, "must be a valid IPv6 address")
		}
	case "uri":
		parsed, err := url.Parse(value)
		if err != nil || parsed.Scheme == "" {
			return violated(field, "must be a valid URI")
		}
	case "date-time":
		if _, err := time.Parse(time.RFC3339, value); err != nil {
			return violated(field, "must be an RFC 3339 timestamp")
		}
	case "date":
		if _, err := time.Parse("2006-01-02", value); err != nil {
			return violated(field, "must be a date (YYYY-MM-DD)")
		}
	}
	return nil
}
