// Package repository defines the record store interface and its sqlite implementation.
package repository

import "github.com/okian/medalgrid/pkg/logger"

// Option applies a configuration option to the SQLStore.
type Option func(*SQLStore)

// WithMaxReadWindow caps the rows returned by one windowed read.
func WithMaxReadWindow(n int) Option {
	return func(s *SQLStore) {
		if n > 0 {
			s.maxReadWindow = n
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *SQLStore) {
		if l != nil {
			s.logger = l
		}
	}
}
