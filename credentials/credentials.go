// Package credentials loads API keys from standard locations. The
// matching engine talks to two kinds of remote services, embedding
// providers and chat providers, and both resolve their keys here.
package credentials

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrInsecurePermissions is returned when credentials file has overly permissive permissions.
var ErrInsecurePermissions = fmt.Errorf("credentials file has insecure permissions")

// Credentials holds API keys loaded from credentials.toml.
// Uses a generic map to support any provider without hardcoding.
type Credentials struct {
	// LLM is the generic chat API key (used when no provider-specific key is found)
	LLM *ProviderCreds `toml:"llm"`

	// Embedding is the generic embedding API key
	Embedding *ProviderCreds `toml:"embedding"`

	// Provider-specific sections (loaded dynamically)
	providers map[string]*ProviderCreds
}

// ProviderCreds holds credentials for a single provider
type ProviderCreds struct {
	APIKey string `toml:"api_key"`
}

// StandardPaths returns the standard credential file locations in order of priority
func StandardPaths() []string {
	paths := []string{"credentials.toml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "jobmatch", "credentials.toml"),
			filepath.Join(home, ".jobmatch", "credentials.toml"),
		)
	}

	return paths
}

// Load loads credentials from the first available standard location
func Load() (*Credentials, string, error) {
	for _, path := range StandardPaths() {
		if _, err := os.Stat(path); err == nil {
			creds, err := LoadFile(path)
			if err != nil {
				return nil, path, err
			}
			return creds, path, nil
		}
	}
	return nil, "", nil // No credentials file found (not an error)
}

// LoadFile loads credentials from a specific file.
// Returns ErrInsecurePermissions if file is readable by group or others.
func LoadFile(path string) (*Credentials, error) {
	// Check file permissions (Unix only)
	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		mode := info.Mode().Perm()
		// Credentials must be 0400 (owner read-only)
		if mode != 0400 {
			return nil, fmt.Errorf("%w: %s has mode %04o (must be 0400)",
				ErrInsecurePermissions, path, mode)
		}
	}

	// Decode into a generic map to pick up every section
	var rawData map[string]interface{}
	if _, err := toml.DecodeFile(path, &rawData); err != nil {
		return nil, err
	}

	creds := &Credentials{
		providers: make(map[string]*ProviderCreds),
	}

	for key, value := range rawData {
		section, ok := value.(map[string]interface{})
		if !ok {
			continue
		}

		apiKey, _ := section["api_key"].(string)
		if apiKey == "" {
			continue
		}

		provCreds := &ProviderCreds{APIKey: apiKey}

		switch key {
		case "llm":
			creds.LLM = provCreds
		case "embedding":
			creds.Embedding = provCreds
		default:
			creds.providers[key] = provCreds
		}
	}

	return creds, nil
}

// GetAPIKey returns the chat API key for a provider.
// Priority: [provider] section > [llm] section > environment variable
func (c *Credentials) GetAPIKey(provider string) string {
	if key := c.lookup(provider); key != "" {
		return key
	}
	if c != nil && c.LLM != nil && c.LLM.APIKey != "" {
		return c.LLM.APIKey
	}
	return os.Getenv(envVarForProvider(provider))
}

// GetEmbeddingAPIKey returns the embedding API key for a provider.
// Priority: [provider] section > [embedding] section > environment variable
func (c *Credentials) GetEmbeddingAPIKey(provider string) string {
	if key := c.lookup(provider); key != "" {
		return key
	}
	if c != nil && c.Embedding != nil && c.Embedding.APIKey != "" {
		return c.Embedding.APIKey
	}
	return os.Getenv(envVarForProvider(provider))
}

// lookup finds a provider-specific key, trying the name as given and a
// normalized form (lowercase, no dashes).
func (c *Credentials) lookup(provider string) string {
	if c == nil {
		return ""
	}
	if creds, ok := c.providers[provider]; ok && creds.APIKey != "" {
		return creds.APIKey
	}
	normalized := strings.ToLower(strings.ReplaceAll(provider, "-", ""))
	if creds, ok := c.providers[normalized]; ok && creds.APIKey != "" {
		return creds.APIKey
	}
	return ""
}

// envVarForProvider returns the environment variable name for a provider.
func envVarForProvider(provider string) string {
	switch provider {
	case "groq":
		return "GROQ_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "openai", "openai-compat":
		return "OPENAI_API_KEY"
	case "google":
		return "GOOGLE_API_KEY"
	default:
		// Generic: PROVIDER_API_KEY
		return strings.ToUpper(strings.ReplaceAll(provider, "-", "_")) + "_API_KEY"
	}
}
