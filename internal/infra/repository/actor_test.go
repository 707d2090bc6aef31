package repository

import (
	"strings"
	"testing"
)

func TestProfileKey(t *testing.T) {
	a := profileKey("user with spaces/and slashes")
	b := profileKey("user with spaces/and slashes")
	if a != b {
		t.Fatalf("expected stable key, got %s and %s", a, b)
	}
	if strings.ContainsAny(a, " \n\t") || len(a) > 250 {
		t.Fatalf("invalid memcache key %q", a)
	}
	if profileKey("u1") == profileKey("u2") {
		t.Fatalf("expected distinct keys")
	}
}
