package shiftspace

import (
	"fmt"
	"net/url"
	"strings"
)

// MalformedDestinationError reports a publish target that is not "user/<id>" or "group/<id>".
type MalformedDestinationError struct {
	Token string
}

func (e MalformedDestinationError) Error() string {
	return fmt.Sprintf("malformed destination %q: expected user/<id> or group/<id>", e.Token)
}

func ParseDestination(token string) (Destination, error) {
	kind, id, ok := strings.Cut(token, "/")
	if !ok || id == "" || strings.Contains(id, "/") {
		return Destination{}, MalformedDestinationError{Token: token}
	}

	switch DestinationKind(kind) {
	case DestinationUser, DestinationGroup:
		return Destination{Kind: DestinationKind(kind), ID: id}, nil
	default:
		return Destination{}, MalformedDestinationError{Token: token}
	}
}

// ParseDestinations rejects the whole list if any token is malformed.
func ParseDestinations(tokens []string) ([]Destination, error) {
	dests := make([]Destination, 0, len(tokens))
	for _, token := range tokens {
		d, err := ParseDestination(token)
		if err != nil {
			return nil, err
		}
		dests = append(dests, d)
	}
	return dests, nil
}

// DomainOf returns the scheme and host part of href, e.g. "http://example.com".
func DomainOf(href string) string {
	u, err := url.Parse(href)
	if err != nil || u.Host == "" {
		return ""
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return scheme + "://" + u.Host
}
