package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/sso-harvest/internal/domain"
	"github.com/bnema/sso-harvest/internal/ports"
)

const RegistryTokenSecretKey = "ssoh/registry/admin_token"

type CredentialService struct {
	store ports.SecretStore
}

func NewCredentialService(store ports.SecretStore) *CredentialService {
	return &CredentialService{store: store}
}

func (s *CredentialService) SetRegistryToken(ctx context.Context, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("registry token is empty")
	}
	if err := s.store.Put(ctx, RegistryTokenSecretKey, value); err != nil {
		return fmt.Errorf("store registry token: %w", err)
	}
	return nil
}

func (s *CredentialService) RemoveRegistryToken(ctx context.Context) error {
	if err := s.store.Delete(ctx, RegistryTokenSecretKey); err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
		return fmt.Errorf("delete registry token: %w", err)
	}
	return nil
}

// RegistryToken returns explicit when set, otherwise the stored secret.
func (s *CredentialService) RegistryToken(ctx context.Context, explicit string) (string, error) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit, nil
	}
	if s.store == nil {
		return "", domain.ErrRegistryTokenMissing
	}

	value, err := s.store.Get(ctx, RegistryTokenSecretKey)
	if err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			return "", domain.ErrRegistryTokenMissing
		}
		return "", fmt.Errorf("load registry token: %w", err)
	}
	if strings.TrimSpace(value) == "" {
		return "", domain.ErrRegistryTokenMissing
	}
	return strings.TrimSpace(value), nil
}
