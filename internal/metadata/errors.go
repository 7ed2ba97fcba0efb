package metadata

import "fmt"

const maxBodySnippet = 500

// UpstreamError wraps a non-2xx MusicBrainz response with its status code
// and a truncated body snippet for the caller's log.
type UpstreamError struct {
	StatusCode int
	Body       string
}

// NewUpstreamError truncates body to 500 chars per the error-handling
// contract before wrapping it.
func NewUpstreamError(statusCode int, body []byte) *UpstreamError {
	snippet := string(body)
	if len(snippet) > maxBodySnippet {
		snippet = snippet[:maxBodySnippet]
	}
	return &UpstreamError{StatusCode: statusCode, Body: snippet}
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("musicbrainz upstream status %d: %s", e.StatusCode, e.Body)
}
