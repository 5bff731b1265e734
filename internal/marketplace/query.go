package marketplace

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// DefaultQuery is offered when the user is prompted for a query
const DefaultQuery = "notamedia"

// MaxQueryAttempts is how many times the prompt asks before giving up
const MaxQueryAttempts = 5

var (
	// ErrEmptyQuery is returned for blank catalog queries
	ErrEmptyQuery = errors.New("please enter full url or search term")
	// ErrInvalidQuery is returned when a URL query cannot be used
	ErrInvalidQuery = errors.New("invalid marketplace url")
)

var urlPattern = regexp.MustCompile(`^(?i)https?://`)

// ValidateQuery accepts any non-blank input and returns it unchanged
func ValidateQuery(input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", ErrEmptyQuery
	}
	return input, nil
}

// SearchURL returns the marketplace search page for a free-text term
func SearchURL(host, term string) string {
	return "http://" + host + "/search/?q=" + url.QueryEscape(term)
}

// ResolveQuery turns a query into the base URL of a module listing.
// Queries starting with http:// or https:// are used as is, anything else
// is searched for on host.
func ResolveQuery(query, host string) (*url.URL, error) {
	if _, err := ValidateQuery(query); err != nil {
		return nil, err
	}

	raw := strings.TrimSpace(query)
	if !urlPattern.MatchString(raw) {
		raw = SearchURL(host, raw)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: %s has no host", ErrInvalidQuery, raw)
	}
	return u, nil
}
