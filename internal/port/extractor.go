package port

// Extractor turns a remote document reference into plain text.
// Any failure is fatal for that document and is propagated, not retried.
type Extractor interface {
	ExtractText(url string) (string, error)
}
