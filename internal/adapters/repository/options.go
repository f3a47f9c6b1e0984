package repository

import "os"

// defaultKey matches the storage key the page has always used.
const defaultKey = "workouts"

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithKey sets the storage key; the blob lives in <dir>/<key>.json.
func WithKey(key string) Option {
	return func(s *FileStore) {
		if key != "" {
			s.key = key
		}
	}
}

// WithFileMode sets the permission bits for the stored file.
func WithFileMode(mode os.FileMode) Option {
	return func(s *FileStore) {
		if mode != 0 {
			s.mode = mode
		}
	}
}
