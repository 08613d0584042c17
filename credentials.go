package twitter

import (
	"fmt"
	"os"
	"strings"

	"dario.cat/mergo"
)

// Environment variable names for fallback credential resolution.
const (
	EnvAPIKey            = "X_API_KEY"
	EnvAPISecret         = "X_API_SECRET"
	EnvAccessToken       = "X_ACCESS_TOKEN"
	EnvAccessTokenSecret = "X_ACCESS_SECRET"
	EnvBearerToken       = "X_BEARER_TOKEN"
)

// requiredEnvKeys lists the keys named by ConfigurationError, in display order.
var requiredEnvKeys = []string{EnvAPIKey, EnvAPISecret, EnvAccessToken, EnvAccessTokenSecret}

// Credentials is the resolved credential set for the X API.
// The four OAuth 1.0a fields are required; BearerToken enables a lighter read client.
type Credentials struct {
	APIKey            string `yaml:"api_key"`
	APISecret         string `yaml:"api_secret"`
	AccessToken       string `yaml:"access_token"`
	AccessTokenSecret string `yaml:"access_token_secret"`
	BearerToken       string `yaml:"bearer_token"`
}

// ConfigurationError reports missing required credentials.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return "missing required X API credentials. Set them in the config file or via environment variables: " +
		strings.Join(requiredEnvKeys, ", ")
}

// LookupEnv is the default environment source for ResolveCredentials.
func LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// ResolveCredentials merges explicit config over the environment, field by field.
// An empty explicit field falls back to its environment variable. Fails with
// *ConfigurationError if any of the four required fields is still empty.
func ResolveCredentials(explicit *Credentials, lookup func(string) (string, bool)) (Credentials, error) {
	if lookup == nil {
		lookup = LookupEnv
	}

	var resolved Credentials
	if explicit != nil {
		resolved = *explicit
	}

	env := Credentials{
		APIKey:            envValue(lookup, EnvAPIKey),
		APISecret:         envValue(lookup, EnvAPISecret),
		AccessToken:       envValue(lookup, EnvAccessToken),
		AccessTokenSecret: envValue(lookup, EnvAccessTokenSecret),
		BearerToken:       envValue(lookup, EnvBearerToken),
	}
	if err := mergo.Merge(&resolved, env); err != nil {
		return Credentials{}, fmt.Errorf("merge credentials: %w", err)
	}

	var missing []string
	for key, v := range map[string]string{
		EnvAPIKey:            resolved.APIKey,
		EnvAPISecret:         resolved.APISecret,
		EnvAccessToken:       resolved.AccessToken,
		EnvAccessTokenSecret: resolved.AccessTokenSecret,
	} {
		if v == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return Credentials{}, &ConfigurationError{Missing: sortedByRequired(missing)}
	}
	return resolved, nil
}

func envValue(lookup func(string) (string, bool), key string) string {
	v, _ := lookup(key)
	return strings.TrimSpace(v)
}

// sortedByRequired orders missing keys as in requiredEnvKeys.
func sortedByRequired(keys []string) []string {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	out := make([]string, 0, len(keys))
	for _, k := range requiredEnvKeys {
		if set[k] {
			out = append(out, k)
		}
	}
	return out
}
