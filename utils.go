package snaps

import (
	"crypto/rand"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// IsValidAddress reports whether s is structurally a Stellar public address:
// exactly 56 characters starting with 'G'. No checksum verification.
func IsValidAddress(s string) bool {
	return len(s) == 56 && s[0] == 'G'
}

var assetCodeRe = regexp.MustCompile(`^[a-zA-Z0-9]{1,12}$`)

// IsValidAssetCode reports whether s is a 1-12 character alphanumeric asset code.
func IsValidAssetCode(s string) bool {
	return assetCodeRe.MatchString(s)
}

// IsValidAmount reports whether s parses as a finite number strictly greater
// than zero.
func IsValidAmount(s string) bool {
	if s == "" {
		return false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return false
	}
	return n > 0
}

// idAlphabet is URL-safe, nanoid style.
const idAlphabet = "useandom-26T198340PX75pxJACKVERYMINDBUSHWOLF_GQZbfghjklqvwyzrict"

// GenerateSnapID returns a random URL-safe snap identifier of the given length.
func GenerateSnapID(length int) string {
	if length <= 0 {
		length = 8
	}
	buf := make([]byte, length)
	rand.Read(buf)
	id := make([]byte, length)
	for i, b := range buf {
		id[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return string(id)
}

var snapIDRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// IsValidSnapID reports whether id is a well-formed snap identifier:
// 4-32 URL-safe characters.
func IsValidSnapID(id string) bool {
	if len(id) < 4 || len(id) > 32 {
		return false
	}
	return snapIDRe.MatchString(id)
}

var idSegmentRe = regexp.MustCompile(`^([a-zA-Z0-9_-]+)`)

// ExtractSnapID pulls a snap identifier out of a URL path. Patterns default to
// the common snap path prefixes.
func ExtractSnapID(rawurl string, patterns ...string) string {
	if len(patterns) == 0 {
		patterns = []string{"/s/", "/snap/", "/pay/"}
	}

	u, err := url.Parse(rawurl)
	if err != nil {
		return ""
	}

	for _, pattern := range patterns {
		idx := strings.Index(u.Path, pattern)
		if idx < 0 {
			continue
		}
		rest := u.Path[idx+len(pattern):]
		m := idSegmentRe.FindString(rest)
		if m != "" && IsValidSnapID(m) {
			return m
		}
	}
	return ""
}

// NormalizeDomain lowercases a hostname and strips one leading "www." so
// registry lookups behave the same regardless of how a link was written.
func NormalizeDomain(domain string) string {
	d := strings.ToLower(domain)
	return strings.TrimPrefix(d, "www.")
}

// ExtractDomain returns the host of a URL, or "" if it cannot be parsed.
func ExtractDomain(rawurl string) string {
	u, err := url.Parse(rawurl)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

// ExtractPath returns the path component of a URL, or "" if it cannot be parsed.
func ExtractPath(rawurl string) string {
	u, err := url.Parse(rawurl)
	if err != nil {
		return ""
	}
	return u.Path
}
