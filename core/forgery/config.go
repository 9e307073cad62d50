package forgery

import "errors"

// DefaultTokenParam is the request parameter that carries the authenticity token.
const DefaultTokenParam = "authenticity_token"

// HeaderName carries the token for script-originated requests that do not send form parameters.
const HeaderName = "X-CSRF-Token"

// Config provides environment-based configuration for a Protector.
// Secret, Digest and TokenParam become the starting options of every group.
type Config struct {
	Enabled    bool   `env:"CSRF_PROTECTION_ENABLED" envDefault:"true"`
	Secret     string `env:"CSRF_SECRET"`
	Digest     string `env:"CSRF_DIGEST" envDefault:"SHA1"`
	TokenParam string `env:"CSRF_TOKEN_PARAM" envDefault:"authenticity_token"`
}

// DefaultConfig returns an enabled Config with the SHA1 digest and the
// authenticity_token parameter.
func DefaultConfig() Config {
	return Config{
		Enabled:    true,
		Digest:     DefaultDigest,
		TokenParam: DefaultTokenParam,
	}
}

// ProtectionConfig is the resolved configuration of an action group.
// Groups hand out copies, so a value obtained from Group.Config never changes.
type ProtectionConfig struct {
	// Enabled reports whether protection was enabled for the group at all.
	Enabled bool
	// Secret is a literal HMAC key. SecretFunc, when set, takes precedence.
	Secret     string
	SecretFunc func(Session) (string, error)
	Digest     string
	TokenParam string
}

// HasSecret reports whether tokens are derived with the secret-HMAC strategy.
func (c ProtectionConfig) HasSecret() bool {
	return c.SecretFunc != nil || c.Secret != ""
}

func (c ProtectionConfig) digest() string {
	if c.Digest == "" {
		return DefaultDigest
	}
	return c.Digest
}

// Param returns the request parameter that carries the token.
func (c ProtectionConfig) Param() string {
	if c.TokenParam == "" {
		return DefaultTokenParam
	}
	return c.TokenParam
}

func (c ProtectionConfig) resolveSecret(sess Session) (string, error) {
	if c.SecretFunc == nil {
		return c.Secret, nil
	}
	secret, err := c.SecretFunc(sess)
	if err != nil {
		return "", err
	}
	if secret == "" {
		return "", errors.New("forgery: secret function returned an empty secret")
	}
	return secret, nil
}
