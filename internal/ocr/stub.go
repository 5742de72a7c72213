package ocr

// Stub is a deterministic Engine for tests: it returns Text for every image,
// or Err when set.
type Stub struct {
	Text string
	Err  error
}

func (s *Stub) ImageFile(path string) (string, error) {
	_ = path
	return s.Text, s.Err
}

func (s *Stub) ImageBytes(data []byte) (string, error) {
	_ = data
	return s.Text, s.Err
}
