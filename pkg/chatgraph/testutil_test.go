package chatgraph

import (
	"context"
)

// Test state types used across tests

// Turn is a conversation-shaped state for engine tests.
type Turn struct {
	Message string
	Trace   []string
	Visits  int
	Clear   bool
	Done    bool
}

// Counter is a minimal state for iteration tests.
type Counter struct {
	Value int
}

// Helper node functions

// increment bumps the counter.
func increment(ctx Context, s Counter) (Counter, error) {
	s.Value++
	return s, nil
}

// makeStage creates a node that records its visit on the turn and in tracker.
func makeStage(name string, tracker *[]string) NodeFunc[Turn] {
	return func(ctx Context, s Turn) (Turn, error) {
		*tracker = append(*tracker, name)
		s.Trace = append(s.Trace, name)
		s.Visits++
		return s, nil
	}
}

// makeFailingStage creates a node that returns the given error.
func makeFailingStage(err error) NodeFunc[Turn] {
	return func(ctx Context, s Turn) (Turn, error) {
		return s, err
	}
}

// makePanicStage creates a node that panics with the given value.
func makePanicStage(value any) NodeFunc[Turn] {
	return func(ctx Context, s Turn) (Turn, error) {
		panic(value)
	}
}

// testCtx creates a plain test context.
func testCtx() Context {
	return NewContext(context.Background())
}
