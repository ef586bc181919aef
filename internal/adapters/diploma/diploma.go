// Package diploma renders award certificates and stores the artifacts.
// Image composition is left to Renderer implementations; the manifest
// renderer shipped here writes the certificate fields as a JSON document
// that a print pipeline lays over the template.
package diploma

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Certificate holds everything printed on one diploma.
type Certificate struct {
	Rank          int    `json:"rank"`
	CategoryLabel string `json:"category"`
	Name          string `json:"name"`
	Organization  string `json:"organization"`
	Choreography  string `json:"choreography"`
	Template      string `json:"template,omitempty"`
}

// Renderer turns a certificate into an artifact.
type Renderer interface {
	Render(ctx context.Context, c Certificate) ([]byte, error)
	// Ext is the file extension of rendered artifacts, with the dot.
	Ext() string
}

// ManifestRenderer renders certificates as JSON.
type ManifestRenderer struct{}

var _ Renderer = ManifestRenderer{}

// Render encodes c.
func (ManifestRenderer) Render(ctx context.Context, c Certificate) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.Rank < 1 {
		return nil, fmt.Errorf("%w: rank %d", ErrInvalidCertificate, c.Rank)
	}
	if c.Name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidCertificate)
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode certificate: %w", err)
	}
	return b, nil
}

// Ext returns ".json".
func (ManifestRenderer) Ext() string { return ".json" }

// ArtifactName builds a unique file name for one performer's diploma.
func ArtifactName(eventID, entryID, performerID int64, rank int, ext string) string {
	return fmt.Sprintf("%d_%d_%d_%d_%s%s", eventID, entryID, performerID, rank, uuid.NewString()[:8], ext)
}
