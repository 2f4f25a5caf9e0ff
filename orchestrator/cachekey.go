package orchestrator

import (
	"crypto/md5" //nolint:gosec // cache-key fingerprint only, not a security boundary
	"encoding/hex"

	"github.com/jonwraymond/aperturegate/cache"
)

// cacheKey computes hex(md5(intent || canonical_json(context))) per §4.3,
// reusing cache.CanonicalJSON (the same deterministic, key-sorted
// marshalling cache.DefaultKeyer hashes with SHA-256) so the context
// portion of the fingerprint never depends on map iteration order.
// Identity is deliberately excluded from the fingerprint: it drives an
// orthogonal authorization filter, not ranking, and including it would
// needlessly fragment the cache per caller.
func cacheKey(intent string, ctx Context) string {
	canonical := canonicalizeContext(ctx)
	h := md5.New()
	h.Write([]byte(intent))
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil))
}

func canonicalizeContext(ctx Context) []byte {
	m := map[string]any{
		"required_capabilities": ctx.RequiredCapabilities,
		"auth_required":         ctx.AuthRequired,
		"session_id":            ctx.SessionID,
		"workflow_type":         ctx.WorkflowType,
	}
	if len(ctx.Extra) > 0 {
		m["extra"] = ctx.Extra
	}
	b, err := cache.CanonicalJSON(m)
	if err != nil {
		// Canonicalization of a map[string]any built from concrete fields
		// above cannot fail; fall back to a stable empty object rather
		// than propagating an error from a pure function.
		return []byte("{}")
	}
	return b
}
