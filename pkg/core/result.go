package core

// TextResult is the normalized outcome of a chat or transcription call.
// Raw carries the upstream document when it parsed as JSON, nil otherwise.
type TextResult struct {
	Text string         `json:"text"`
	Raw  map[string]any `json:"raw,omitempty"`
}

// AudioResult is the normalized outcome of a synthesis call. The audio bytes
// are passed through opaquely; the gateway never transcodes.
type AudioResult struct {
	Audio     []byte
	MediaType string
}
