package ocr

// Engine recognizes text in images. Implementations must be safe for
// sequential reuse; callers do not invoke them concurrently.
type Engine interface {
	ImageFile(path string) (string, error)
	ImageBytes(data []byte) (string, error)
}
