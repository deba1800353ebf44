package secrets

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"

	"github.com/mwhite7112/woodpantry-pickle/internal/config"
)

// AzureSource reads the key from an Azure Key Vault secret using the
// default Azure credential chain.
type AzureSource struct {
	cfg    config.AzureSecretConfig
	client *azsecrets.Client
}

func NewAzureSource(cfg config.AzureSecretConfig) (*AzureSource, error) {
	if cfg.VaultURL == "" {
		return nil, fmt.Errorf("%w: AZURE_VAULT_URL is required", ErrMisconfigured)
	}
	if cfg.SecretName == "" {
		return nil, fmt.Errorf("%w: AZURE_SECRET_NAME is required", ErrMisconfigured)
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("create azure credential: %w", err)
	}
	client, err := azsecrets.NewClient(cfg.VaultURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create key vault client: %w", err)
	}
	return &AzureSource{cfg: cfg, client: client}, nil
}

func (s *AzureSource) Name() string { return "azure_keyvault:" + s.cfg.SecretName }

func (s *AzureSource) APIKey(ctx context.Context) (string, error) {
	resp, err := s.client.GetSecret(ctx, s.cfg.SecretName, s.cfg.Version, nil)
	if err != nil {
		return "", fmt.Errorf("get secret: %w", err)
	}
	if resp.Value == nil {
		return "", ErrNotFound
	}
	return *resp.Value, nil
}
