package services

import "errors"

// Pipeline errors. Backend failures are wrapped around these so callers can
// branch with errors.Is without caring which backend produced them.
var (
	// ErrEmbeddingFailed indicates the embedding backend could not produce a vector.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrZeroVector indicates the backend returned a vector that cannot be normalised.
	ErrZeroVector = errors.New("embedding has zero norm")

	// ErrGenerationFailed indicates the generative model call failed.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrEmptyResponse indicates the generative model returned no text.
	ErrEmptyResponse = errors.New("empty model response")

	// ErrIndexUnavailable indicates the vector index could not serve the request.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrDuplicateID indicates an entry id that is already stored in the index.
	ErrDuplicateID = errors.New("duplicate entry id")

	// ErrInvalidInput indicates malformed ingestion input.
	ErrInvalidInput = errors.New("invalid input")
)
