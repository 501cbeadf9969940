package domain

import "errors"

var (
	// ErrEmptyQuery signals a missing or whitespace-only question.
	ErrEmptyQuery = errors.New("query must not be empty")
	// ErrPropertyNotFound signals a missing catalog record.
	ErrPropertyNotFound = errors.New("property not found")
	// ErrVectorDimMismatch signals a query vector that does not match the
	// configured index dimension.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationProviderError signals a generation provider failure.
	ErrGenerationProviderError = errors.New("generation provider error")
	// ErrUnrecognizedShape signals a provider payload matching none of the
	// accepted response shapes.
	ErrUnrecognizedShape = errors.New("unrecognized provider response shape")
)
