package storage

// Slots is a string-valued key/value area scoped to one client or form session,
// the server-side stand-in for browser local storage.
type Slots interface {
	Get(name string) (string, bool, error)
	Set(name, value string) error
	Remove(name string) error
}

// SlotProvider hands out slot areas by namespace.
type SlotProvider interface {
	Namespace(ns string) Slots
}
