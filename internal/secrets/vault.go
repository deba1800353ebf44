package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"

	vault "github.com/hashicorp/vault/api"

	"github.com/mwhite7112/woodpantry-pickle/internal/config"
)

// VaultSource reads the key from HashiCorp Vault using token auth. KV v2 is
// tried first, then a plain KV v1 read of the same path.
type VaultSource struct {
	cfg    config.VaultSecretConfig
	client *vault.Client
}

func NewVaultSource(cfg config.VaultSecretConfig) (*VaultSource, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("%w: VAULT_ADDR is required", ErrMisconfigured)
	}
	if cfg.SecretPath == "" {
		return nil, fmt.Errorf("%w: VAULT_SECRET_PATH is required", ErrMisconfigured)
	}
	if cfg.Mount == "" {
		cfg.Mount = "secret"
	}
	if cfg.Field == "" {
		cfg.Field = config.DefaultSecretField
	}

	token := cfg.Token
	if cfg.TokenFile != "" {
		data, err := os.ReadFile(cfg.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("read vault token file: %w", err)
		}
		token = strings.TrimSpace(string(data))
	}
	if token == "" {
		return nil, fmt.Errorf("%w: VAULT_TOKEN or VAULT_TOKEN_FILE is required", ErrMisconfigured)
	}

	vcfg := vault.DefaultConfig()
	vcfg.Address = cfg.Address
	client, err := vault.NewClient(vcfg)
	if err != nil {
		return nil, fmt.Errorf("create vault client: %w", err)
	}
	client.SetToken(token)

	return &VaultSource{cfg: cfg, client: client}, nil
}

func (s *VaultSource) Name() string { return "hashicorp_vault:" + s.cfg.SecretPath }

func (s *VaultSource) APIKey(ctx context.Context) (string, error) {
	data, err := s.read(ctx)
	if err != nil {
		return "", err
	}
	return stringField(data, s.cfg.Field)
}

func (s *VaultSource) read(ctx context.Context) (map[string]any, error) {
	path := strings.TrimPrefix(s.cfg.SecretPath, s.cfg.Mount+"/data/")
	path = strings.TrimPrefix(path, s.cfg.Mount+"/")

	secret, err := s.client.KVv2(s.cfg.Mount).Get(ctx, path)
	if err == nil && secret != nil && secret.Data != nil {
		return secret.Data, nil
	}

	v1, v1Err := s.client.Logical().ReadWithContext(ctx, s.cfg.Mount+"/"+path)
	if v1Err != nil {
		return nil, fmt.Errorf("read vault secret: %w", v1Err)
	}
	if v1 == nil || v1.Data == nil {
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return nil, ErrNotFound
	}
	return v1.Data, nil
}
