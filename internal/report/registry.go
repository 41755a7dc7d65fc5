package report

import (
	"fmt"
	"sort"
	"strings"
)

// Registry manages report writers for different formats.
// It provides a centralized way to access report writers by format name.
type Registry struct {
	writers map[string]Writer
}

// NewRegistry creates an empty report registry. Callers register the writers
// for the formats they support.
func NewRegistry() *Registry {
	return &Registry{writers: make(map[string]Writer)}
}

// Register adds a writer under its Format.
func (r *Registry) Register(w Writer) {
	r.writers[strings.ToLower(w.Format())] = w
}

// Get returns a writer for the specified format.
// Format names are case-insensitive (e.g., "Excel", "EXCEL", "excel" all work).
// Returns an error if the format is not supported.
func (r *Registry) Get(format string) (Writer, error) {
	normalized := strings.ToLower(strings.TrimSpace(format))

	writer, ok := r.writers[normalized]
	if !ok {
		supported := r.GetAll()
		return nil, fmt.Errorf("unsupported report format %q, supported formats: %s",
			format, strings.Join(supported, ", "))
	}
	return writer, nil
}

// GetAll returns all supported format names in sorted order.
func (r *Registry) GetAll() []string {
	formats := make([]string, 0, len(r.writers))
	for format := range r.writers {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

// Has checks if the specified format is supported.
// Format names are case-insensitive.
func (r *Registry) Has(format string) bool {
	normalized := strings.ToLower(strings.TrimSpace(format))
	_, ok := r.writers[normalized]
	return ok
}
