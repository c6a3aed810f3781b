// Package repository adapts the backing store's JSON documents into typed,
// locally cached override maps. Reads degrade to empty maps on failure so
// roster resolution never aborts; writes are optimistic (local state first,
// store write fired without blocking the caller, no automatic retry).
package repository

import (
	"context"
	"sync"
	"time"
)

const writeTimeout = 10 * time.Second

// StoreMetrics counts store interactions. Implemented by the metrics service;
// all methods must tolerate a nil receiver wrapper via the nilMetrics default.
type StoreMetrics interface {
	StoreReadFallback(endpoint string)
	StoreWriteFailure(endpoint string)
	StoreWrite(endpoint string)
}

type nilMetrics struct{}

func (nilMetrics) StoreReadFallback(string) {}
func (nilMetrics) StoreWriteFailure(string) {}
func (nilMetrics) StoreWrite(string)        {}

func orNilMetrics(m StoreMetrics) StoreMetrics {
	if m == nil {
		return nilMetrics{}
	}
	return m
}

func writeContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), writeTimeout)
}

// snapshot holds a whole value swapped atomically on refresh.
type snapshot[T any] struct {
	mu  sync.RWMutex
	val T
}

func newSnapshot[T any](initial T) *snapshot[T] {
	return &snapshot[T]{val: initial}
}

func (s *snapshot[T]) get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.val
}

func (s *snapshot[T]) set(v T) {
	s.mu.Lock()
	s.val = v
	s.mu.Unlock()
}
