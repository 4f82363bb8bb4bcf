package crypto

import (
	"context"
	"fmt"

	vault "github.com/hashicorp/vault/api"
	"github.com/turtacn/oralrisk/internal/config"
	"github.com/turtacn/oralrisk/pkg/errors"
	"github.com/turtacn/oralrisk/pkg/logger"
)

// SecretSource resolves named secrets from an external store.
type SecretSource interface {
	GetSecret(ctx context.Context, path, key string) (string, error)
}

type vaultClientImpl struct {
	client    *vault.Client
	log       logger.Logger
	mountPath string
}

// NewVaultClient creates and configures a new Vault client backed by a KV v2 mount.
func NewVaultClient(cfg *config.VaultConfig, log logger.Logger) (SecretSource, error) {
	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, err
	}
	client.SetToken(cfg.Token)

	mount := cfg.MountPath
	if mount == "" {
		mount = "secret"
	}
	return &vaultClientImpl{
		client:    client,
		log:       log.WithComponent("vault"),
		mountPath: mount,
	}, nil
}

func (v *vaultClientImpl) GetSecret(ctx context.Context, path, key string) (string, error) {
	secret, err := v.client.KVv2(v.mountPath).Get(ctx, path)
	if err != nil {
		v.log.Error(ctx, "Failed to read secret from Vault", err, logger.Fields{"path": path})
		return "", errors.ErrUnavailable.WithMessage("vault read failed").WithCause(err)
	}
	if secret == nil || secret.Data == nil {
		return "", errors.ErrUnavailable.WithMessage(fmt.Sprintf("vault secret %s not found", path))
	}
	raw, ok := secret.Data[key]
	if !ok {
		return "", errors.ErrUnavailable.WithMessage(fmt.Sprintf("vault secret %s has no key %s", path, key))
	}
	value, ok := raw.(string)
	if !ok || value == "" {
		return "", errors.ErrUnavailable.WithMessage(fmt.Sprintf("vault secret %s/%s is not a non-empty string", path, key))
	}
	return value, nil
}

// ResolveSigningSecret returns the JWT signing secret: from Vault when enabled, else from
// configuration. When neither provides one, a random per-process secret is generated and a
// warning logged; tokens then do not survive a restart.
func ResolveSigningSecret(ctx context.Context, cfg *config.Config, source SecretSource, log logger.Logger) ([]byte, error) {
	if cfg.Vault.Enabled {
		secret, err := source.GetSecret(ctx, cfg.Vault.SecretPath, cfg.Vault.SecretKey)
		if err != nil {
			return nil, err
		}
		log.Info(ctx, "JWT signing secret loaded from Vault", logger.Fields{"path": cfg.Vault.SecretPath})
		return []byte(secret), nil
	}
	if cfg.JWT.Secret != "" {
		return []byte(cfg.JWT.Secret), nil
	}
	secret, err := RandomBytes(32)
	if err != nil {
		return nil, err
	}
	log.Warn(ctx, "No JWT secret configured, using an ephemeral one")
	return secret, nil
}
