package watch

// SetReady registers fn to run once every watch is in place.
func (w *Watcher) SetReady(fn func()) {
	w.ready = fn
}
