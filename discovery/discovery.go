// Package discovery implements the stellar-snap.json routing manifest:
// wildcard path patterns, capture substitution, and file validation.
package discovery

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	snaps "github.com/stellarsnaps/stellarsnaps-go"
)

// CompilePattern turns a path pattern into an anchored regexp. Every regexp
// metacharacter in the pattern is treated literally; each `*` becomes a greedy
// capturing group matching one or more characters, including slashes.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	quoted := regexp.QuoteMeta(pattern)
	expr := "^" + strings.ReplaceAll(quoted, `\*`, "(.+)") + "$"
	return regexp.Compile(expr)
}

// MatchPath matches a URL path against rules in order and returns the first
// matching API path with $1..$n placeholders replaced by the captured groups.
// No match returns "".
func MatchPath(path string, rules []snaps.DiscoveryRule) string {
	for _, rule := range rules {
		re, err := CompilePattern(rule.PathPattern)
		if err != nil {
			continue
		}

		m := re.FindStringSubmatch(path)
		if m == nil {
			continue
		}

		apiPath := rule.APIPath
		// Substitute highest index first so $1 never eats the prefix of $10.
		for i := len(m) - 1; i >= 1; i-- {
			apiPath = strings.Replace(apiPath, "$"+strconv.Itoa(i), m[i], 1)
		}
		return apiPath
	}
	return ""
}

// NewFile assembles a discovery file, enforcing the required fields.
func NewFile(name, description, icon string, rules []snaps.DiscoveryRule) (snaps.DiscoveryFile, error) {
	file := snaps.DiscoveryFile{
		Name:        name,
		Description: description,
		Icon:        icon,
		Rules:       rules,
	}
	if err := ValidateFile(&file); err != nil {
		return snaps.DiscoveryFile{}, err
	}
	return file, nil
}

// ValidateFile checks a discovery file fetched from a third-party domain.
func ValidateFile(file *snaps.DiscoveryFile) error {
	if file == nil {
		return fmt.Errorf("discovery file is empty")
	}
	if file.Name == "" {
		return fmt.Errorf("discovery file requires a name")
	}
	if len(file.Rules) == 0 {
		return fmt.Errorf("discovery file requires at least one rule")
	}
	for i, rule := range file.Rules {
		if rule.PathPattern == "" {
			return fmt.Errorf("rule %d requires a pathPattern", i)
		}
		if rule.APIPath == "" {
			return fmt.Errorf("rule %d requires an apiPath", i)
		}
	}
	return nil
}
