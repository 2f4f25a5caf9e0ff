package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/jonwraymond/aperturegate/secret"
)

// envProvider resolves "secretref:env:<NAME>" references against the
// process environment. It is the minimal concrete secret.Provider the
// gateway needs out of the box; deployments that need a vault or cloud
// secret manager register their own provider with the same Resolver.
type envProvider struct{}

var _ secret.Provider = envProvider{}

func (envProvider) Name() string { return "env" }

func (envProvider) Resolve(_ context.Context, ref string) (string, error) {
	v, ok := os.LookupEnv(ref)
	if !ok {
		return "", fmt.Errorf("secret: environment variable %q is not set", ref)
	}
	return v, nil
}

func (envProvider) Close() error { return nil }

// ResolveBackendCredential resolves a backend's conventional API credential
// reference (secret.BackendCredentialRef) through the Gateway's Secrets
// resolver. Callers whose backends use a different naming convention
// should call gw.Secrets.ResolveValue with their own ref string instead.
func (gw *Gateway) ResolveBackendCredential(ctx context.Context, backendID string) (string, error) {
	return gw.Secrets.ResolveValue(ctx, secret.BackendCredentialRef(backendID))
}
