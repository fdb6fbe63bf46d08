package service

import (
	"strings"

	"ai-docchat-be/internal/apperror"
	"ai-docchat-be/internal/constant"
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/pkg/crypto"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/memory"
)

// CredentialResolver turns the user's stored (encrypted) provider keys
// into a plaintext bundle for the generation call. Decryption happens at
// most once per cache window; the bundle never leaves process memory.
type CredentialResolver struct {
	cipher *crypto.Cipher
	cache  *memory.CredentialCache
	logger logger.ILogger
}

func NewCredentialResolver(cipher *crypto.Cipher, cache *memory.CredentialCache, log logger.ILogger) *CredentialResolver {
	return &CredentialResolver{cipher: cipher, cache: cache, logger: log}
}

// Resolve builds the key bundle and checks that the key the selected
// provider needs is present. Provider matching is by prefix, so model
// variants like "gemini-2.0-flash" select the Gemini key. Providers
// outside the known prefixes require no stored key.
func (r *CredentialResolver) Resolve(user *entity.User, provider string) (*memory.CredentialBundle, error) {
	userId := user.Id.String()

	bundle, found := r.cache.Get(userId)
	if !found {
		var err error
		bundle, err = r.decryptBundle(user)
		if err != nil {
			return nil, err
		}
		r.cache.Save(userId, bundle)
	}

	switch {
	case strings.HasPrefix(provider, constant.ProviderPrefixGemini):
		if bundle.GeminiKey == nil {
			return nil, apperror.NewMissingCredential("Gemini")
		}
	case strings.HasPrefix(provider, constant.ProviderPrefixGrok):
		if bundle.GrokKey == nil {
			return nil, apperror.NewMissingCredential("Grok")
		}
	}

	return bundle, nil
}

func (r *CredentialResolver) decryptBundle(user *entity.User) (*memory.CredentialBundle, error) {
	bundle := &memory.CredentialBundle{}

	if user.GeminiApiKey != nil && *user.GeminiApiKey != "" {
		plain, err := r.cipher.Decrypt(*user.GeminiApiKey)
		if err != nil {
			r.logger.Error("CredentialResolver", "Failed to decrypt stored Gemini key", map[string]interface{}{
				"user_id": user.Id.String(),
				"error":   err.Error(),
			})
			return nil, apperror.NewInternal("Failed to decrypt stored API credentials.", err)
		}
		bundle.GeminiKey = &plain
	}

	if user.GrokApiKey != nil && *user.GrokApiKey != "" {
		plain, err := r.cipher.Decrypt(*user.GrokApiKey)
		if err != nil {
			r.logger.Error("CredentialResolver", "Failed to decrypt stored Grok key", map[string]interface{}{
				"user_id": user.Id.String(),
				"error":   err.Error(),
			})
			return nil, apperror.NewInternal("Failed to decrypt stored API credentials.", err)
		}
		bundle.GrokKey = &plain
	}

	return bundle, nil
}
