package testutil

import (
	"context"
	"sync"

	"bookmarket/internal/identity"
	"bookmarket/internal/prediction"
)

// StubPredictor returns a fixed result, or Err when set, and records every call.
type StubPredictor struct {
	mu     sync.Mutex
	Result prediction.Result
	Err    error
	Calls  []prediction.Input
}

func (p *StubPredictor) Predict(_ context.Context, in prediction.Input) (*prediction.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, in)
	if p.Err != nil {
		return nil, p.Err
	}
	r := p.Result
	return &r, nil
}

// CallCount returns how many times Predict ran.
func (p *StubPredictor) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}

// StubVerifier maps raw tokens to identities. Unknown tokens are invalid.
type StubVerifier struct {
	Identities map[string]*identity.Identity
	Err        error
}

func (v *StubVerifier) Verify(_ context.Context, token string) (*identity.Identity, error) {
	if v.Err != nil {
		return nil, v.Err
	}
	id, ok := v.Identities[token]
	if !ok {
		return nil, identity.ErrInvalidToken
	}
	return id, nil
}
