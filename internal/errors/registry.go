package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Severity   Severity
	Message    string
	Detail     string
	Suggestion string
}

// Codes reported by the reactive runtime and the component layer.
const (
	CodeEvaluation      = "R001"
	CodeUserCallback    = "R002"
	CodeUpdateLoop      = "R003"
	CodeNonPrimitiveKey = "R004"
	CodeRootDataAdd     = "R005"
	CodeUntrackedTarget = "R006"
	CodeObservedData    = "R007"
	CodePropMutation    = "R008"
	CodeUndefinedField  = "R009"
	CodeDuplicateField  = "R010"
	CodeMissingRender   = "R011"
	CodeBadWatchPath    = "R012"
	CodeComputedSetter  = "R013"
	CodeInvalidData     = "R014"
	CodeDispatchClosed  = "R015"

	CodeConfigRead    = "R100"
	CodeConfigParse   = "R101"
	CodeConfigInvalid = "R102"
	CodeConfigMissing = "R103"
	CodeConfigWrite   = "R104"
)

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime errors (R001-R003)
	// ============================================

	CodeEvaluation: {
		Category:   CategoryEvaluation,
		Message:    "Error during evaluation",
		Detail:     "A render function or watcher getter panicked. The previous value is kept and the watcher stays subscribed.",
		Suggestion: "Check the getter for nil dereferences and type assertions on tracked values",
	},
	CodeUserCallback: {
		Category: CategoryCallback,
		Message:  "Error in user callback",
		Detail:   "A watch callback or lifecycle hook panicked. Other callbacks in the same flush still run.",
	},
	CodeUpdateLoop: {
		Category:   CategoryScheduler,
		Message:    "Possible infinite update loop",
		Detail:     "A watcher re-queued itself too many times within a single flush and was skipped for the rest of it.",
		Suggestion: "Avoid writing state from a watcher that the same watcher reads",
	},

	// ============================================
	// Structural warnings (R004-R015)
	// ============================================

	CodeNonPrimitiveKey: {
		Category:   CategoryStructure,
		Severity:   SeverityWarning,
		Message:    "Avoid using non-primitive value as key",
		Suggestion: "Use a string or number as the node key",
	},
	CodeRootDataAdd: {
		Category:   CategoryStructure,
		Severity:   SeverityWarning,
		Message:    "Avoid adding reactive properties to a component instance or its root data at runtime",
		Suggestion: "Declare the property upfront in the data function",
	},
	CodeUntrackedTarget: {
		Category: CategoryStructure,
		Severity: SeverityWarning,
		Message:  "Cannot set reactive property on undefined, null, or primitive value",
	},
	CodeObservedData: {
		Category:   CategoryStructure,
		Severity:   SeverityWarning,
		Message:    "Avoid using observed data object as vnode data",
		Suggestion: "Always create fresh vnode data objects in each render",
	},
	CodePropMutation: {
		Category:   CategoryStructure,
		Severity:   SeverityWarning,
		Message:    "Avoid mutating a prop directly since the value will be overwritten whenever the parent component re-renders",
		Suggestion: "Use a data or computed property based on the prop's value",
	},
	CodeUndefinedField: {
		Category:   CategoryStructure,
		Severity:   SeverityWarning,
		Message:    "Property or method is not defined on the instance but referenced during render",
		Suggestion: "Declare the property in data, props or computed",
	},
	CodeDuplicateField: {
		Category: CategoryStructure,
		Severity: SeverityWarning,
		Message:  "Property is already declared",
	},
	CodeMissingRender: {
		Category: CategoryStructure,
		Severity: SeverityWarning,
		Message:  "Failed to mount component: render function not defined",
	},
	CodeBadWatchPath: {
		Category:   CategoryStructure,
		Severity:   SeverityWarning,
		Message:    "Failed watching path",
		Detail:     "Watcher only accepts simple dot-delimited paths.",
		Suggestion: "For full control, watch a function instead",
	},
	CodeComputedSetter: {
		Category: CategoryStructure,
		Severity: SeverityWarning,
		Message:  "Computed property was assigned to but it has no setter",
	},
	CodeInvalidData: {
		Category: CategoryStructure,
		Severity: SeverityWarning,
		Message:  "Invalid vnode data",
	},
	CodeDispatchClosed: {
		Category: CategoryScheduler,
		Severity: SeverityWarning,
		Message:  "Task dispatched after the event loop stopped",
	},

	// ============================================
	// Config errors (R100-R199)
	// ============================================

	CodeConfigRead: {
		Category: CategoryConfig,
		Message:  "Failed to read config file",
	},
	CodeConfigParse: {
		Category:   CategoryConfig,
		Message:    "Invalid config file",
		Suggestion: "Check that the file is valid JSON or YAML",
	},
	CodeConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Invalid config value",
	},
	CodeConfigMissing: {
		Category: CategoryConfig,
		Message:  "Config file not found",
	},
	CodeConfigWrite: {
		Category: CategoryConfig,
		Message:  "Failed to write config file",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns every registered code in ascending order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
