package handler

// Capability holds an optional provider client. An absent capability has no
// client to call; Get is the only way to reach the client.
type Capability[C any] struct {
	client  C
	present bool
}

// Configured wraps a client that is available for this run.
func Configured[C any](c C) Capability[C] {
	return Capability[C]{client: c, present: true}
}

// Absent returns a capability with no client.
func Absent[C any]() Capability[C] {
	return Capability[C]{}
}

// Get returns the client and whether it is configured.
func (c Capability[C]) Get() (C, bool) {
	return c.client, c.present
}

// Present reports whether the client is configured.
func (c Capability[C]) Present() bool {
	return c.present
}
