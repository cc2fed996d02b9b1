package errors

import "sort"

// Template defines a registered diagnostic.
type Template struct {
	Category Category
	Severity Severity
	Message  string
	DocURL   string
}

const docBase = "https://vango.dev/docs/vrt/diagnostics/"

func warn(category Category, message, code string) Template {
	return Template{Category: category, Severity: SeverityWarning, Message: message, DocURL: docBase + code}
}

func fail(category Category, message, code string) Template {
	return Template{Category: category, Severity: SeverityError, Message: message, DocURL: docBase + code}
}

// registry maps codes to their templates.
var registry = map[string]Template{
	// Reactivity (R001-R019)
	"R001": warn(CategoryReactivity, "Value cannot be made reactive", "R001"),
	"R002": warn(CategoryReactivity, "Write through readonly wrapper", "R002"),
	"R003": warn(CategoryReactivity, "Delete through readonly wrapper", "R003"),
	"R004": warn(CategoryReactivity, "Write to computed value", "R004"),

	// Component (C001-C019)
	"C001": warn(CategoryComponent, "Render context read of undeclared binding", "C001"),
	"C002": warn(CategoryComponent, "Render context write with no owner", "C002"),
	"C003": warn(CategoryComponent, "Emitted event has no handler", "C003"),
	"C004": warn(CategoryComponent, "Async component failed to load", "C004"),
	"C005": warn(CategoryComponent, "Async component timed out", "C005"),
	"C006": warn(CategoryComponent, "Prop type mismatch", "C006"),
	"C007": warn(CategoryComponent, "Missing required prop", "C007"),
	"C008": fail(CategoryComponent, "Async component requires a loop", "C008"),

	// Scheduler (S001-S019)
	"S001": fail(CategoryScheduler, "Scheduled job panicked", "S001"),
	"S002": fail(CategoryScheduler, "Maximum recursive updates exceeded", "S002"),
	"S003": fail(CategoryScheduler, "Event loop is closed", "S003"),

	// Hydration (H001-H019)
	"H001": fail(CategoryHydration, "Hydration is not supported", "H001"),

	// Config (E120-E139)
	"E120": fail(CategoryConfig, "Invalid vrt.json", "E120"),
	"E121": fail(CategoryConfig, "Missing required configuration", "E121"),
	"E122": fail(CategoryConfig, "Invalid port number", "E122"),
	"E123": fail(CategoryConfig, "Invalid log level", "E123"),

	// CLI (E140-E159)
	"E140": fail(CategoryCLI, "Snapshot export failed", "E140"),
	"E141": fail(CategoryCLI, "Unknown demo scenario", "E141"),
	"E142": fail(CategoryCLI, "Invalid event", "E142"),
}

// GetAllCodes returns all registered codes in sorted order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for a code.
func GetTemplate(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new template to the registry.
func Register(code string, template Template) {
	registry[code] = template
}
