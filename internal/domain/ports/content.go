package ports

// ContentResolver maps rendered text back to the data path of the field
// it came from, and reads/writes leaves by that same path convention.
type ContentResolver interface {
	// Resolve returns the path of the first leaf whose trimmed value
	// matches the trimmed target text; ok is false when nothing matches.
	Resolve(doc []byte, targetText string) (path string, ok bool)

	// ResolveByID resolves via a stable fragment identifier when the
	// content carries one; preferred over text matching.
	ResolveByID(doc []byte, fragmentID string) (path string, ok bool)

	// Get reads the string leaf at path.
	Get(doc []byte, path string) (value string, ok bool)

	// Set writes a string leaf at path, returning the updated document.
	Set(doc []byte, path string, value string) ([]byte, error)
}
