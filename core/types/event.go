package types

// Event is the generic representation of a state change announcement. The
// attribute map keeps payloads schema-free for downstream indexers.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
