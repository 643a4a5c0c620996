package contentpath

// Resolver adapts the package functions to the ContentResolver
// interface. Stateless; safe for concurrent use.
type Resolver struct{}

// NewResolver creates a content resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve implements ContentResolver.
func (Resolver) Resolve(doc []byte, targetText string) (string, bool) {
	return Resolve(doc, targetText)
}

// ResolveByID implements ContentResolver.
func (Resolver) ResolveByID(doc []byte, fragmentID string) (string, bool) {
	return ResolveByID(doc, fragmentID)
}

// Get implements ContentResolver.
func (Resolver) Get(doc []byte, path string) (string, bool) {
	return Get(doc, path)
}

// Set implements ContentResolver.
func (Resolver) Set(doc []byte, path string, value string) ([]byte, error) {
	return Set(doc, path, value)
}
