package chunker

// DefaultHeadings is the built-in vocabulary of section heading terms
// recognised in clinical guideline documents. The list is ordered and
// configurable; longer phrases appear before their prefixes so the
// matcher prefers the most specific term.
var DefaultHeadings = []string{
	// Core descriptions
	"Primary Lesion", "Secondary Lesion", "Lesions", "Morphology", "Rash", "Eruption",
	"Clinical Features", "Symptoms", "Signs", "Physical Examination", "Presentation",

	// Specific attributes
	"Color", "Texture", "Distribution", "Configuration", "Arrangement", "Sites",
	"Erythema", "Scaling", "Crusting", "Ulceration", "Pigmentation",

	// Diagnostics and management
	"Differential Diagnosis", "Diagnosis", "Pathology", "Histopathology", "Biopsy",
	"Treatment", "Management", "Topicals", "Systemics", "Therapy", "Prognosis",
	"Prevention", "Patient Education",
}
