package testutil

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/specialistvlad/parsegrid/internal/parser"
	"github.com/specialistvlad/parsegrid/internal/registry"
)

// ErrBoom is returned by the stub parser's "explode" operation.
var ErrBoom = errors.New("boom")

// CallLog records parser invocations across goroutines.
type CallLog struct {
	mu    sync.Mutex
	calls []string
}

// Record appends a call.
func (c *CallLog) Record(call string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
}

// Calls returns a copy of the recorded calls.
func (c *CallLog) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

// StubParser lists "unzip", "explode", "panic" and "ghost" as available.
// "ghost" is declared but not provided.
type StubParser struct {
	Origin  string
	Destiny string
	Options parser.Options
	log     *CallLog
}

// Process implements parser.Processor.
func (p *StubParser) Process(context.Context) error {
	p.log.Record(fmt.Sprintf("process %s", p.Origin))
	return nil
}

// AvailableOperations implements parser.OperationLister.
func (p *StubParser) AvailableOperations() []string {
	return []string{"unzip", "explode", "panic", "ghost"}
}

// Operation implements parser.OperationProvider.
func (p *StubParser) Operation(name string) (parser.Operation, bool) {
	switch name {
	case "unzip":
		return func(_ context.Context, opts parser.Options) error {
			p.log.Record(fmt.Sprintf("unzip %s -> %s", p.Origin, p.Destiny))
			return nil
		}, true
	case "explode":
		return func(context.Context, parser.Options) error {
			p.log.Record(fmt.Sprintf("explode %s", p.Origin))
			return ErrBoom
		}, true
	case "panic":
		return func(context.Context, parser.Options) error {
			panic("stub parser panicked")
		}, true
	}
	return nil, false
}

// HalfParser only lists operations; it lacks Process.
type HalfParser struct{}

// AvailableOperations implements parser.OperationLister.
func (HalfParser) AvailableOperations() []string { return nil }

// StubModule registers "NewStubParser" and "NewHalfParser".
type StubModule struct {
	Log *CallLog
}

// Register implements the registry.Module interface.
func (m *StubModule) Register(r *registry.Registry) {
	r.RegisterParser("NewStubParser", &registry.RegisteredParser{
		Type: reflect.TypeOf(&StubParser{}),
		New: func(origin, destiny string, opts parser.Options) (any, error) {
			return &StubParser{Origin: origin, Destiny: destiny, Options: opts, log: m.Log}, nil
		},
	})
	r.RegisterParser("NewHalfParser", &registry.RegisteredParser{
		Type: reflect.TypeOf(HalfParser{}),
		New: func(string, string, parser.Options) (any, error) {
			return HalfParser{}, nil
		},
	})
}
