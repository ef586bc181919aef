package diploma

import "errors"

// Sentinel kinds for diploma errors.
var (
	ErrInvalidCertificate = errors.New("invalid certificate")
	ErrArtifactNotFound   = errors.New("artifact not found")
	ErrInvalidName        = errors.New("invalid artifact name")
)
