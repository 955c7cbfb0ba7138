package testutil

import (
	"context"
	"sync"

	"moin2git/internal/wiki"
)

// StubConverter is a wiki.Converter that records requests and returns
// Prefix+Body, or Err when set.
type StubConverter struct {
	mu       sync.Mutex
	Prefix   string
	Err      error
	requests []wiki.ConvertRequest
}

// NewStubConverter creates a converter that returns bodies unchanged.
func NewStubConverter() *StubConverter {
	return &StubConverter{}
}

func (c *StubConverter) Convert(_ context.Context, req wiki.ConvertRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if c.Err != nil {
		return "", c.Err
	}
	return c.Prefix + req.Body, nil
}

// Requests returns every request seen so far.
func (c *StubConverter) Requests() []wiki.ConvertRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]wiki.ConvertRequest(nil), c.requests...)
}

// Compile-time check
var _ wiki.Converter = (*StubConverter)(nil)
