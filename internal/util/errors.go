package util

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrNoExtractableText = errors.New("no text could be extracted from the document or its references")

	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")
	ErrNoIndex              = errors.New("no document indexed for this session")
	ErrAnswerUnavailable    = errors.New("answer generation failed")
)
