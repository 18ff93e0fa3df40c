// internal/app/system/limits/limits.go
package limits

// Request body size limits for the console's forms.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxLoginFormSize caps the sign-in form (role, name, token, return).
	MaxLoginFormSize = 16 << 10 // 16 KB

	// MaxActionFormSize caps the approve/reject/delete action posts.
	MaxActionFormSize = 16 << 10 // 16 KB

	// MaxSettingsFormSize caps the console settings form.
	MaxSettingsFormSize = 64 << 10 // 64 KB
)
