package generator

import (
	"context"
	"sync"
)

// Call records one Complete invocation received by a Scripted generator.
type Call struct {
	System      string
	User        string
	Temperature float64
}

// Scripted is an in-memory Generator for tests. If Fn is set it decides
// every response; otherwise responses are consumed from Responses in order,
// repeating the last one when exhausted. Err, when set, is returned on
// every call.
type Scripted struct {
	mu        sync.Mutex
	Fn        func(system, user string) (string, error)
	Responses []string
	Err       error

	calls []Call
	next  int
}

func (s *Scripted) Complete(_ context.Context, system, user string, temperature float64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{System: system, User: user, Temperature: temperature})

	if s.Err != nil {
		return "", s.Err
	}
	if s.Fn != nil {
		return s.Fn(system, user)
	}
	if len(s.Responses) == 0 {
		return "", ErrEmptyCompletion
	}
	idx := s.next
	if idx >= len(s.Responses) {
		idx = len(s.Responses) - 1
	}
	s.next++
	return s.Responses[idx], nil
}

// Calls returns a copy of all recorded invocations.
func (s *Scripted) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns how many times Complete was invoked.
func (s *Scripted) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}
