package twitter

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// referenceSigner uses the credentials from X's "Creating a signature" guide.
func referenceSigner() *oauth1Signer {
	s := newOAuth1Signer(Credentials{
		APIKey:            "xvz1evFS4wEEPTGEFPHBog",
		APISecret:         "kAcSOqF21Fu85e7zjz7ZN2U4ZRhfV3WpwPAoE3Z7kBw",
		AccessToken:       "370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb",
		AccessTokenSecret: "LswwdoUaIvS8ltyTt5jkRh4J50vUPVVHtR2YPi5kE",
	})
	s.now = func() time.Time { return time.Unix(1318622958, 0) }
	s.nonce = func() string { return "kYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg" }
	return s
}

func TestOAuth1Sign_ReferenceVector(t *testing.T) {
	s := referenceSigner()
	params := url.Values{
		"include_entities":       {"true"},
		"status":                 {"Hello Ladies + Gentlemen, a signed OAuth request!"},
		"oauth_consumer_key":     {"xvz1evFS4wEEPTGEFPHBog"},
		"oauth_nonce":            {"kYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg"},
		"oauth_signature_method": {"HMAC-SHA1"},
		"oauth_timestamp":        {"1318622958"},
		"oauth_token":            {"370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb"},
		"oauth_version":          {"1.0"},
	}
	got := s.sign("POST", "https://api.twitter.com/1.1/statuses/update.json", params)
	assert.Equal(t, "hCtSmYh+iHYCEqBWrE7C7hYmtUk=", got)
}

func TestOAuth1Authorization_Header(t *testing.T) {
	s := referenceSigner()
	header := s.authorization("POST",
		"https://api.twitter.com/1.1/statuses/update.json?include_entities=true",
		url.Values{"status": {"Hello Ladies + Gentlemen, a signed OAuth request!"}})

	require.True(t, strings.HasPrefix(header, "OAuth "))
	assert.Contains(t, header, `oauth_signature="hCtSmYh%2BiHYCEqBWrE7C7hYmtUk%3D"`)
	assert.Contains(t, header, `oauth_consumer_key="xvz1evFS4wEEPTGEFPHBog"`)
	assert.Contains(t, header, `oauth_timestamp="1318622958"`)
	assert.NotContains(t, header, "status=")
	assert.NotContains(t, header, "include_entities")
}

func TestOAuth1Authorization_FreshNonce(t *testing.T) {
	s := newOAuth1Signer(Credentials{APIKey: "k", APISecret: "s", AccessToken: "t", AccessTokenSecret: "ts"})
	a := s.authorization("GET", "https://api.x.com/2/users/me", nil)
	b := s.authorization("GET", "https://api.x.com/2/users/me", nil)
	assert.NotEqual(t, a, b)
}

func TestBearerAuth(t *testing.T) {
	assert.Equal(t, "Bearer abc", bearerAuth{token: "abc"}.authorization("GET", "https://api.x.com/2/tweets/1", nil))
}

func TestPercentEncode(t *testing.T) {
	tests := map[string]string{
		"Ladies + Gentlemen": "Ladies%20%2B%20Gentlemen",
		"An encoded string!": "An%20encoded%20string%21",
		"Dogs, Cats & Mice":  "Dogs%2C%20Cats%20%26%20Mice",
		"☃":                  "%E2%98%83",
		"safe-._~":           "safe-._~",
	}
	for in, want := range tests {
		assert.Equal(t, want, percentEncode(in), "input %q", in)
	}
}

func TestAPIHeaders(t *testing.T) {
	h := apiHeaders("Bearer x", false)
	assert.Equal(t, "Bearer x", h["authorization"])
	assert.Equal(t, userAgent, h["user-agent"])
	assert.NotContains(t, h, "content-type")

	h = apiHeaders("Bearer x", true)
	assert.Equal(t, "application/json", h["content-type"])
}
