// Package secrets resolves the provider API key from the configured backend.
// Resolution happens once at startup; a missing key is a fatal error.
package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mwhite7112/woodpantry-pickle/internal/config"
)

var (
	// ErrNotFound indicates the backend had no usable API key.
	ErrNotFound = errors.New("api key not found")
	// ErrMisconfigured indicates required source settings are missing.
	ErrMisconfigured = errors.New("credential source misconfigured")
)

// Source yields the provider API key.
type Source interface {
	// Name identifies the source in logs. It never includes the secret.
	Name() string
	APIKey(ctx context.Context) (string, error)
}

// New builds the Source selected by cfg.Source.
func New(ctx context.Context, cfg config.CredentialConfig) (Source, error) {
	switch cfg.Source {
	case config.SourceEnv, "":
		return EnvSource{value: cfg.APIKey}, nil
	case config.SourceFile:
		if cfg.File == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY_FILE is required", ErrMisconfigured)
		}
		return FileSource{path: cfg.File}, nil
	case config.SourceAWSSecretsManager:
		return NewAWSSource(ctx, cfg.AWS)
	case config.SourceAzureKeyVault:
		return NewAzureSource(cfg.Azure)
	case config.SourceHashiCorpVault:
		return NewVaultSource(cfg.Vault)
	default:
		return nil, fmt.Errorf("%w: unknown source %q", ErrMisconfigured, cfg.Source)
	}
}

// Resolve builds the configured source and reads the key from it.
func Resolve(ctx context.Context, cfg config.CredentialConfig) (string, error) {
	src, err := New(ctx, cfg)
	if err != nil {
		return "", err
	}

	key, err := src.APIKey(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", src.Name(), err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("%s: %w", src.Name(), ErrNotFound)
	}
	return key, nil
}

// EnvSource returns the key captured from OPENAI_API_KEY at config load.
type EnvSource struct {
	value string
}

func (s EnvSource) Name() string { return "env:OPENAI_API_KEY" }

func (s EnvSource) APIKey(context.Context) (string, error) {
	if s.value == "" {
		return "", ErrNotFound
	}
	return s.value, nil
}

// FileSource reads the key from a mounted file, e.g. a Kubernetes secret.
type FileSource struct {
	path string
}

func (s FileSource) Name() string { return "file:" + s.path }

func (s FileSource) APIKey(context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("read key file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// fieldFromJSON picks field out of a JSON object secret. Secrets that are not
// JSON objects are returned as-is.
func fieldFromJSON(raw, field string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return trimmed, nil
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(trimmed), &data); err != nil {
		return trimmed, nil //nolint:nilerr // not JSON after all; treat as the raw key
	}
	return stringField(data, field)
}

func stringField(data map[string]any, field string) (string, error) {
	value, ok := data[field]
	if !ok {
		return "", fmt.Errorf("%w: field %q not present", ErrNotFound, field)
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("field %q is not a string", field)
	}
	return s, nil
}
