// Package config loads service settings from the environment and an optional
// YAML file. Environment variables always win over file values.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Credential sources understood by the secrets package.
const (
	SourceEnv               = "env"
	SourceFile              = "file"
	SourceAWSSecretsManager = "aws_secretsmanager"
	SourceAzureKeyVault     = "azure_keyvault"
	SourceHashiCorpVault    = "hashicorp_vault"
)

const (
	DefaultPort          = "8080"
	DefaultLogLevel      = "info"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-3.5-turbo"
	DefaultHTTPTimeout   = 30 * time.Second
	DefaultSecretField   = "api_key"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Credential CredentialConfig `yaml:"credential"`
	Events     EventsConfig     `yaml:"events"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// OpenAIConfig describes the chat-completion provider. The API key is not
// part of it; see CredentialConfig.
type OpenAIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// CredentialConfig selects where the provider API key is read from.
type CredentialConfig struct {
	Source string            `yaml:"source"`
	APIKey string            `yaml:"-"`
	File   string            `yaml:"file"`
	AWS    AWSSecretConfig   `yaml:"aws"`
	Azure  AzureSecretConfig `yaml:"azure"`
	Vault  VaultSecretConfig `yaml:"vault"`
}

type AWSSecretConfig struct {
	Region   string `yaml:"region"`
	SecretID string `yaml:"secret_id"`
	RoleARN  string `yaml:"role_arn"`
	Field    string `yaml:"field"`
}

type AzureSecretConfig struct {
	VaultURL   string `yaml:"vault_url"`
	SecretName string `yaml:"secret_name"`
	Version    string `yaml:"version"`
}

type VaultSecretConfig struct {
	Address    string `yaml:"address"`
	Token      string `yaml:"-"`
	TokenFile  string `yaml:"token_file"`
	Mount      string `yaml:"mount"`
	SecretPath string `yaml:"secret_path"`
	Field      string `yaml:"field"`
}

type EventsConfig struct {
	RabbitMQURL string `yaml:"rabbitmq_url"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	Insecure     bool   `yaml:"insecure"`
	ServiceName  string `yaml:"service_name"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: ServerConfig{Port: DefaultPort},
		Log:    LogConfig{Level: DefaultLogLevel},
		OpenAI: OpenAIConfig{
			BaseURL: DefaultOpenAIBaseURL,
			Model:   DefaultOpenAIModel,
			Timeout: DefaultHTTPTimeout,
		},
		Credential: CredentialConfig{
			Source: SourceEnv,
			AWS:    AWSSecretConfig{Field: DefaultSecretField},
			Vault:  VaultSecretConfig{Mount: "secret", Field: DefaultSecretField},
		},
		Telemetry: TelemetryConfig{ServiceName: "woodpantry-pickle"},
	}
}

// Load reads CONFIG_FILE (if set) and then applies environment overrides.
func Load() (Config, error) {
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path, ok := lookup("CONFIG_FILE"); ok && path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	set("PORT", &c.Server.Port)
	set("LOG_LEVEL", &c.Log.Level)
	set("OPENAI_BASE_URL", &c.OpenAI.BaseURL)
	set("OPENAI_MODEL", &c.OpenAI.Model)

	if v, ok := lookup("HTTP_CLIENT_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse HTTP_CLIENT_TIMEOUT: %w", err)
		}
		c.OpenAI.Timeout = d
	}

	set("CREDENTIAL_SOURCE", &c.Credential.Source)
	set("OPENAI_API_KEY", &c.Credential.APIKey)
	set("OPENAI_API_KEY_FILE", &c.Credential.File)
	set("AWS_REGION", &c.Credential.AWS.Region)
	set("AWS_SECRET_ID", &c.Credential.AWS.SecretID)
	set("AWS_ROLE_ARN", &c.Credential.AWS.RoleARN)
	set("AWS_SECRET_FIELD", &c.Credential.AWS.Field)
	set("AZURE_VAULT_URL", &c.Credential.Azure.VaultURL)
	set("AZURE_SECRET_NAME", &c.Credential.Azure.SecretName)
	set("AZURE_SECRET_VERSION", &c.Credential.Azure.Version)
	set("VAULT_ADDR", &c.Credential.Vault.Address)
	set("VAULT_TOKEN", &c.Credential.Vault.Token)
	set("VAULT_TOKEN_FILE", &c.Credential.Vault.TokenFile)
	set("VAULT_MOUNT", &c.Credential.Vault.Mount)
	set("VAULT_SECRET_PATH", &c.Credential.Vault.SecretPath)
	set("VAULT_SECRET_FIELD", &c.Credential.Vault.Field)

	set("RABBITMQ_URL", &c.Events.RabbitMQURL)
	set("OTEL_EXPORTER_OTLP_ENDPOINT", &c.Telemetry.OTLPEndpoint)
	set("OTEL_SERVICE_NAME", &c.Telemetry.ServiceName)

	if v, ok := lookup("OTEL_EXPORTER_OTLP_INSECURE"); ok && v != "" {
		insecure, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse OTEL_EXPORTER_OTLP_INSECURE: %w", err)
		}
		c.Telemetry.Insecure = insecure
	}
	return nil
}

// Validate checks structural settings. Whether the credential actually
// resolves is checked at startup by the secrets package.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Server.Port) == "" {
		errs = append(errs, errors.New("server port is required"))
	}
	if strings.TrimSpace(c.OpenAI.BaseURL) == "" {
		errs = append(errs, errors.New("openai base url is required"))
	}
	if strings.TrimSpace(c.OpenAI.Model) == "" {
		errs = append(errs, errors.New("openai model is required"))
	}
	if c.OpenAI.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("openai timeout must be positive, got %s", c.OpenAI.Timeout))
	}

	switch c.Credential.Source {
	case SourceEnv, SourceFile, SourceAWSSecretsManager, SourceAzureKeyVault, SourceHashiCorpVault:
	default:
		errs = append(errs, fmt.Errorf("unknown credential source %q", c.Credential.Source))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Log.Level))
	}

	return errors.Join(errs...)
}
