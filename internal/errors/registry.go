package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (ST001-ST009)
	// ============================================

	"ST001": {
		Category: CategoryRuntime,
		Message:  "Selector read before its first computation",
	},
	"ST002": {
		Category: CategoryRuntime,
		Message:  "Selector used after Dispose",
	},
	"ST003": {
		Category: CategoryRuntime,
		Message:  "Store field written outside its store's Update",
	},
	"ST004": {
		Category: CategoryRuntime,
		Message:  "Tracking frame popped out of order",
	},
	"ST005": {
		Category: CategoryRuntime,
		Message:  "Cascade limit exceeded",
	},

	// ============================================
	// Config Errors (ST010-ST019)
	// ============================================

	"ST010": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},
	"ST011": {
		Category: CategoryConfig,
		Message:  "Configuration file unreadable",
	},

	// ============================================
	// CLI Errors (ST020-ST029)
	// ============================================

	"ST020": {
		Category: CategoryCLI,
		Message:  "Unknown scenario",
	},
}

// GetTemplate returns the template registered for code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// GetAllCodes returns every registered code in ascending order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Register adds or replaces a code template. Intended for init-time use.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
