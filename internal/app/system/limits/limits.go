// internal/app/system/limits/limits.go
package limits

// Request body size limits.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxAboutFormSize is the maximum size of an About Us edit form post.
	MaxAboutFormSize = 1 << 20 // 1 MB

	// MaxBackendResponseSize is the most the REST client reads from a
	// backend response body.
	MaxBackendResponseSize = 1 << 20 // 1 MB
)
