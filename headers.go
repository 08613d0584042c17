package twitter

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const userAgent = "go-xtools/1.0"

// authorizer produces the Authorization header for one request.
type authorizer interface {
	authorization(method, rawURL string, params url.Values) string
}

// oauth1Signer signs requests with OAuth 1.0a HMAC-SHA1 (user context).
type oauth1Signer struct {
	consumerKey    string
	consumerSecret string
	token          string
	tokenSecret    string

	now   func() time.Time
	nonce func() string
}

func newOAuth1Signer(creds Credentials) *oauth1Signer {
	return &oauth1Signer{
		consumerKey:    creds.APIKey,
		consumerSecret: creds.APISecret,
		token:          creds.AccessToken,
		tokenSecret:    creds.AccessTokenSecret,
		now:            time.Now,
		nonce:          func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
}

// authorization builds the OAuth header. params holds query and form parameters;
// JSON bodies are not part of the signature base.
func (s *oauth1Signer) authorization(method, rawURL string, params url.Values) string {
	oauth := map[string]string{
		"oauth_consumer_key":     s.consumerKey,
		"oauth_nonce":            s.nonce(),
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        strconv.FormatInt(s.now().Unix(), 10),
		"oauth_token":            s.token,
		"oauth_version":          "1.0",
	}

	baseURL, query := splitURL(rawURL)
	all := url.Values{}
	for k, vs := range query {
		all[k] = append(all[k], vs...)
	}
	for k, vs := range params {
		all[k] = append(all[k], vs...)
	}
	for k, v := range oauth {
		all.Set(k, v)
	}

	oauth["oauth_signature"] = s.sign(method, baseURL, all)

	keys := make([]string, 0, len(oauth))
	for k := range oauth {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, percentEncode(k)+`="`+percentEncode(oauth[k])+`"`)
	}
	return "OAuth " + strings.Join(parts, ", ")
}

// sign computes the base64 HMAC-SHA1 of the RFC 5849 signature base string.
func (s *oauth1Signer) sign(method, baseURL string, params url.Values) string {
	type pair struct{ k, v string }
	pairs := make([]pair, 0, len(params))
	for k, vs := range params {
		for _, v := range vs {
			pairs = append(pairs, pair{percentEncode(k), percentEncode(v)})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].k == pairs[j].k {
			return pairs[i].v < pairs[j].v
		}
		return pairs[i].k < pairs[j].k
	})

	encoded := make([]string, len(pairs))
	for i, p := range pairs {
		encoded[i] = p.k + "=" + p.v
	}

	base := strings.ToUpper(method) + "&" + percentEncode(baseURL) + "&" + percentEncode(strings.Join(encoded, "&"))
	key := percentEncode(s.consumerSecret) + "&" + percentEncode(s.tokenSecret)

	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// bearerAuth authorizes app-only reads.
type bearerAuth struct {
	token string
}

func (b bearerAuth) authorization(string, string, url.Values) string {
	return "Bearer " + b.token
}

// splitURL separates the scheme/host/path from the query parameters.
func splitURL(rawURL string) (string, url.Values) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL, url.Values{}
	}
	query := u.Query()
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), query
}

// percentEncode applies RFC 3986 encoding: only ALPHA / DIGIT / "-" / "." / "_" / "~" pass through.
func percentEncode(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if ('A' <= c && c <= 'Z') || ('a' <= c && c <= 'z') || ('0' <= c && c <= '9') ||
			c == '-' || c == '.' || c == '_' || c == '~' {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&15])
	}
	return b.String()
}

// apiHeaders returns the base headers for a v2 API request.
func apiHeaders(authorization string, hasBody bool) map[string]string {
	h := map[string]string{
		"authorization": authorization,
		"user-agent":    userAgent,
		"accept":        "application/json",
	}
	if hasBody {
		h["content-type"] = "application/json"
	}
	return h
}

// apiHeaderOrder is the header order sent on every request.
var apiHeaderOrder = []string{
	"authorization",
	"content-type",
	"user-agent",
	"accept",
	"accept-encoding",
}
