package driven

// Normaliser converts raw markup into clean markdown
type Normaliser interface {
	// Normalise cleans the content. Fails with domain.ErrInvalidInput when
	// the content is empty.
	Normalise(content string) (string, error)

	// SupportedTypes returns the MIME types this normaliser handles.
	// Supports wildcards (e.g., "text/*").
	SupportedTypes() []string

	// Priority determines selection order when multiple normalisers match.
	// Higher priority wins.
	Priority() int
}

// NormaliserRegistry selects normalisers by MIME type
type NormaliserRegistry interface {
	// Register adds a normaliser
	Register(normaliser Normaliser)

	// Get retrieves the best-matching normaliser for a MIME type,
	// or nil if none is registered
	Get(mimeType string) Normaliser
}
