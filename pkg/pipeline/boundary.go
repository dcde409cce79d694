package pipeline

import "github.com/google/uuid"

// generateBoundary produces a multipart boundary unique enough to never
// collide with form field content, the same way the request-id interceptor
// mints request identifiers.
func generateBoundary() string {
	return "pipeline-" + uuid.NewString()
}
