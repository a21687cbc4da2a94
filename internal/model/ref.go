package model

// Ref locates a record's document in the remote store. The zero value is a
// pending ref: the record has been constructed locally but no subscription
// tick has confirmed it yet, so it cannot be updated or deleted remotely.
type Ref struct {
	handle string
}

// SyncedRef returns a ref for a record confirmed at the given document handle.
func SyncedRef(handle string) Ref {
	return Ref{handle: handle}
}

// PendingRef returns a ref for a record that has not been persisted yet.
func PendingRef() Ref {
	return Ref{}
}

// Synced reports whether the record has a remote document handle.
func (r Ref) Synced() bool {
	return r.handle != ""
}

// Handle returns the remote document handle, if the record is synced.
func (r Ref) Handle() (string, bool) {
	return r.handle, r.handle != ""
}
