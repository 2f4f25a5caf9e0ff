package bootstrap

import (
	"context"
	"fmt"

	"github.com/jonwraymond/aperturegate/auth"
)

// Authenticate runs req through the Gateway's configured authenticator
// chain and returns the resulting identity, suitable for attaching to
// orchestrator.Context.Identity before a Discover call. Authenticate
// itself is never invoked by Discover — it is the caller's
// request-to-identity boundary, kept separate per the core's
// authentication-mechanics non-goal.
func (gw *Gateway) Authenticate(ctx context.Context, req *auth.AuthRequest) (*auth.Identity, error) {
	if gw.authenticator == nil {
		return auth.AnonymousIdentity(), nil
	}

	result, err := gw.authenticator.Authenticate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: authenticate: %w", err)
	}
	if !result.Authenticated {
		return nil, result.Error
	}
	return result.Identity, nil
}

func buildAuthenticator(cfg Config) auth.Authenticator {
	var authenticators []auth.Authenticator
	if cfg.JWT != nil {
		authenticators = append(authenticators, auth.NewJWTAuthenticator(*cfg.JWT, auth.NewStaticKeyProvider(cfg.JWTSigningKey)))
	}
	if cfg.APIKeys != nil {
		authenticators = append(authenticators, cfg.APIKeys)
	}
	if cfg.OAuth2 != nil {
		authenticators = append(authenticators, auth.NewOAuth2IntrospectionAuthenticator(*cfg.OAuth2))
	}
	if len(authenticators) == 0 {
		return nil
	}
	return auth.NewCompositeAuthenticator(authenticators...)
}
