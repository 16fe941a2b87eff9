package blobstore

// SetFreeFunc replaces the free-space probe for tests.
func (s *Store) SetFreeFunc(fn func(string) (uint64, error)) {
	s.freeFunc = fn
}
