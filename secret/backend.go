package secret

import "strings"

// BackendCredentialRef builds the conventional "secretref:env:<NAME>_API_KEY"
// reference for a backend's API credential, deriving NAME from backendID
// (upper-cased, non-alphanumeric runs collapsed to a single underscore).
// Gateways that don't follow this convention can still pass any ref string
// directly to Resolver.ResolveValue; this is only the default shape.
func BackendCredentialRef(backendID string) string {
	return "secretref:env:" + envName(backendID) + "_API_KEY"
}

func envName(backendID string) string {
	var b strings.Builder
	prevUnderscore := false
	for _, r := range strings.ToUpper(backendID) {
		switch {
		case r >= 'A' && r <= 'Z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case !prevUnderscore:
			b.WriteByte('_')
			prevUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}
