// Package credential resolves the upstream API key at call time.
package credential

import (
	"context"
	"fmt"
	"os"
	"strings"

	"dunemcp/internal/domain"
)

const op = "credential.resolve"

// EnvProvider reads the key from the environment on every call so a rotated
// key is picked up without a restart.
type EnvProvider struct {
	name   string
	lookup func(string) (string, bool)
}

func NewEnvProvider(name string) *EnvProvider {
	if strings.TrimSpace(name) == "" {
		name = domain.DefaultAPIKeyEnv
	}
	return &EnvProvider{name: name, lookup: os.LookupEnv}
}

func (p *EnvProvider) Resolve(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", domain.E(domain.CodeCancelled, op, "invocation cancelled", err)
	}
	value, _ := p.lookup(p.name)
	value = strings.TrimSpace(value)
	if value == "" {
		return "", domain.E(domain.CodeMissingCredential, op,
			fmt.Sprintf("%s environment variable is required", p.name), nil)
	}
	return value, nil
}

// StaticProvider returns a fixed key, typically from the config file.
type StaticProvider struct {
	key string
}

func NewStaticProvider(key string) *StaticProvider {
	return &StaticProvider{key: strings.TrimSpace(key)}
}

func (p *StaticProvider) Resolve(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", domain.E(domain.CodeCancelled, op, "invocation cancelled", err)
	}
	if p.key == "" {
		return "", domain.E(domain.CodeMissingCredential, op, "api key is not configured", nil)
	}
	return p.key, nil
}

// Chain tries providers in order and returns the first key found. A missing
// credential from every provider reports the last provider's error.
type Chain []domain.CredentialProvider

func (c Chain) Resolve(ctx context.Context) (string, error) {
	lastErr := error(domain.E(domain.CodeMissingCredential, op, "no credential provider configured", nil))
	for _, provider := range c {
		if provider == nil {
			continue
		}
		key, err := provider.Resolve(ctx)
		if err == nil {
			return key, nil
		}
		if code, _ := domain.CodeFrom(err); code != domain.CodeMissingCredential {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

var (
	_ domain.CredentialProvider = (*EnvProvider)(nil)
	_ domain.CredentialProvider = (*StaticProvider)(nil)
	_ domain.CredentialProvider = Chain(nil)
)
