package common

import "time"

const (
	// MaxJSONRequestBody limits JSON request bodies for login and status endpoints.
	MaxJSONRequestBody = 1 << 20
	// DefaultMaxUploadBytes is the multipart limit when none is configured.
	DefaultMaxUploadBytes = 20 << 20
	// UploadTimeout bounds relay plus record for one intake request.
	UploadTimeout = 60 * time.Second
	// StoreTimeout bounds a single store query from an operator endpoint.
	StoreTimeout = 5 * time.Second
)
