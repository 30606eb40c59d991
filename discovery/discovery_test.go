package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	snaps "github.com/stellarsnaps/stellarsnaps-go"
)

func TestMatchPath(t *testing.T) {
	rules := []snaps.DiscoveryRule{
		{PathPattern: "/s/*", APIPath: "/api/snap/$1"},
		{PathPattern: "/user/*/donate", APIPath: "/api/donate/$1"},
	}

	assert.Equal(t, "/api/snap/abc123", MatchPath("/s/abc123", rules))
	assert.Equal(t, "/api/donate/john", MatchPath("/user/john/donate", rules))
	assert.Equal(t, "", MatchPath("/s", rules))
	assert.Equal(t, "", MatchPath("/unknown", rules))
}

func TestMatchPathFirstRuleWins(t *testing.T) {
	rules := []snaps.DiscoveryRule{
		{PathPattern: "/s/*", APIPath: "/api/first/$1"},
		{PathPattern: "/s/*", APIPath: "/api/second/$1"},
	}
	assert.Equal(t, "/api/first/x", MatchPath("/s/x", rules))
}

func TestMatchPathMultipleWildcards(t *testing.T) {
	rules := []snaps.DiscoveryRule{
		{PathPattern: "/org/*/snap/*", APIPath: "/api/org/$1/snap/$2"},
	}
	assert.Equal(t, "/api/org/acme/snap/abc", MatchPath("/org/acme/snap/abc", rules))
}

func TestMatchPathWildcardSpansSegments(t *testing.T) {
	rules := []snaps.DiscoveryRule{
		{PathPattern: "/s/*", APIPath: "/api/snap/$1"},
	}
	// Greedy wildcard crosses slashes by design.
	assert.Equal(t, "/api/snap/a/b", MatchPath("/s/a/b", rules))
}

func TestMatchPathEscapesMetacharacters(t *testing.T) {
	rules := []snaps.DiscoveryRule{
		{PathPattern: "/v1.0/*", APIPath: "/api/$1"},
	}
	assert.Equal(t, "/api/x", MatchPath("/v1.0/x", rules))
	// The dot must be literal, not any-character.
	assert.Equal(t, "", MatchPath("/v1x0/x", rules))
}

func TestCompilePattern(t *testing.T) {
	re, err := CompilePattern("/pay/*")
	require.NoError(t, err)
	assert.True(t, re.MatchString("/pay/abc"))
	assert.False(t, re.MatchString("/pay/"))
	assert.False(t, re.MatchString("/pay"))
	assert.False(t, re.MatchString("/other/pay/abc"))
}

func TestValidateFile(t *testing.T) {
	valid := &snaps.DiscoveryFile{
		Name:  "Example",
		Rules: []snaps.DiscoveryRule{{PathPattern: "/s/*", APIPath: "/api/snap/$1"}},
	}
	assert.NoError(t, ValidateFile(valid))

	assert.Error(t, ValidateFile(nil))
	assert.Error(t, ValidateFile(&snaps.DiscoveryFile{Name: "x"}))
	assert.Error(t, ValidateFile(&snaps.DiscoveryFile{
		Rules: []snaps.DiscoveryRule{{PathPattern: "/s/*", APIPath: "/a"}},
	}))
	assert.Error(t, ValidateFile(&snaps.DiscoveryFile{
		Name:  "x",
		Rules: []snaps.DiscoveryRule{{PathPattern: "", APIPath: "/a"}},
	}))
}

func TestNewFile(t *testing.T) {
	file, err := NewFile("Example", "desc", "", []snaps.DiscoveryRule{
		{PathPattern: "/s/*", APIPath: "/api/snap/$1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Example", file.Name)
	assert.Equal(t, "desc", file.Description)

	_, err = NewFile("", "", "", nil)
	assert.Error(t, err)
}
