package errors

// Template defines a registered error type.
type Template struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Config Errors (E101-E199)
	// ============================================

	"E101": {
		Category:   CategoryConfig,
		Message:    "Config file not found",
		Detail:     "fsroute reads route folders from a YAML config file.",
		Suggestion: "Create watcher_config.yaml or pass --config",
	},
	"E102": {
		Category:   CategoryConfig,
		Message:    "Invalid config file",
		Detail:     "The config file could not be parsed as YAML.",
		Suggestion: "Check the file against watcher_config.yaml in the repository",
	},
	"E103": {
		Category:   CategoryConfig,
		Message:    "Route folder not configured",
		Detail:     "Each framework reads its routes root from a <framework>_folder key.",
		Suggestion: "Add e.g. http_folder: app/routes/http to the config file",
	},
	"E104": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
	},

	// ============================================
	// Routing Errors (E201-E299)
	// ============================================

	"E201": {
		Category:   CategoryRouting,
		Message:    "Routes root not found",
		Suggestion: "Check the <framework>_folder entry in the config file",
	},
	"E202": {
		Category:   CategoryRouting,
		Message:    "Unsupported framework",
		Suggestion: "Use one of: http, stream, cli",
	},
	"E203": {
		Category:   CategoryRouting,
		Message:    "Route failed to load",
		Detail:     "A route module could not be bound into its host.",
		Suggestion: "Run 'fsroute routes' to see every failure, or disable strict mode",
	},

	// ============================================
	// CLI Errors (E301-E399)
	// ============================================

	"E301": {
		Category: CategoryCLI,
		Message:  "Server failed",
	},
	"E302": {
		Category:   CategoryCLI,
		Message:    "No commands registered",
		Suggestion: "Check the cli_folder entry and that route packages are linked into the binary",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
