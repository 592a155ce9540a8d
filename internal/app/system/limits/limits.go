// internal/app/system/limits/limits.go
package limits

// Request body size limits for the JSON API.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxJSONBodySize is the maximum size for ordinary JSON bodies:
	// names, descriptions, tags, bindings, entitlements.
	MaxJSONBodySize = 64 << 10 // 64 KB

	// MaxCodeBodySize is the maximum size for code and docs submissions.
	// Workshop scripts render inside Discord messages, so even generous
	// payloads stay far below this.
	MaxCodeBodySize = 1 << 20 // 1 MB
)
