// Package fake provides fake implementations for interfaces commonly used in
// the repository.
//
// The implementations offer configuration to return errors when it is needed by
// the unit test and it is also possible to record the call of functions of an
// object in some cases.
package fake

import (
	"fmt"
	"hash"
	"sync"

	"go.dedis.ch/matchgame/serde"
	"golang.org/x/xerrors"
)

const fakeErrStr = "fake error"

var fakeErr = xerrors.New(fakeErrStr)

// GetError returns the fake error.
func GetError() error {
	return fakeErr
}

// Err returns the expected message of an error wrapping the fake error.
func Err(msg string) string {
	return fmt.Sprintf("%s: %s", msg, fakeErrStr)
}

// Call is a tool to keep track of a function calls.
type Call struct {
	sync.Mutex
	calls [][]interface{}
}

// Get returns the nth call ith parameter.
func (c *Call) Get(n, i int) interface{} {
	c.Lock()
	defer c.Unlock()

	return c.calls[n][i]
}

// Len returns the number of calls.
func (c *Call) Len() int {
	c.Lock()
	defer c.Unlock()

	return len(c.calls)
}

// Add adds a call to the list.
func (c *Call) Add(args ...interface{}) {
	c.Lock()
	c.calls = append(c.calls, args)
	c.Unlock()
}

// Counter is a helper to delay errors or actions. It can be nil without
// panics.
type Counter struct {
	Value int
}

// NewCounter returns a new counter set to the given value.
func NewCounter(value int) *Counter {
	return &Counter{
		Value: value,
	}
}

// Done returns true when the counter reached zero.
func (c *Counter) Done() bool {
	return c == nil || c.Value <= 0
}

// Decrease decrements the counter.
func (c *Counter) Decrease() {
	if c == nil {
		return
	}

	c.Value--
}

// Hash is a fake implementation of the hash.Hash interface.
//
// - implements hash.Hash
type Hash struct {
	hash.Hash

	delay int
	err   error
}

// NewBadHash returns a fake hash that always fails to write.
func NewBadHash() *Hash {
	return &Hash{err: fakeErr}
}

// NewBadHashWithDelay returns a fake hash that fails after a number of
// successful writes.
func NewBadHashWithDelay(delay int) *Hash {
	return &Hash{err: fakeErr, delay: delay}
}

// Write implements hash.Hash.
func (h *Hash) Write([]byte) (int, error) {
	if h.delay > 0 {
		h.delay--
		return 0, nil
	}

	return 0, h.err
}

// Sum implements hash.Hash.
func (h *Hash) Sum([]byte) []byte {
	return []byte{}
}

// HashFactory is a fake implementation of the crypto.HashFactory interface.
//
// - implements crypto.HashFactory
type HashFactory struct {
	hash *Hash
}

// NewHashFactory returns a new fake hash factory.
func NewHashFactory(h *Hash) HashFactory {
	return HashFactory{hash: h}
}

// New implements crypto.HashFactory.
func (f HashFactory) New() hash.Hash {
	return f.hash
}

// Message is a fake implementation of a serde message.
//
// - implements serde.Message
type Message struct {
	Digest []byte
}

// Serialize implements serde.Message.
func (m Message) Serialize(serde.Context) ([]byte, error) {
	return []byte("{}"), nil
}

const (
	// GoodFormat is the identifier of a format engine that succeeds.
	GoodFormat = serde.Format("FakeGood")
	// BadFormat is the identifier of a format engine that fails.
	BadFormat = serde.Format("FakeBad")
)

// Format is a fake format engine.
//
// - implements serde.FormatEngine
type Format struct {
	Msg  serde.Message
	Call *Call
	err  error
}

// NewBadFormat returns a format engine that always returns the fake error.
func NewBadFormat() Format {
	return Format{err: fakeErr}
}

// Encode implements serde.FormatEngine.
func (f Format) Encode(ctx serde.Context, m serde.Message) ([]byte, error) {
	if f.Call != nil {
		f.Call.Add(ctx, m)
	}

	return []byte("fake format"), f.err
}

// Decode implements serde.FormatEngine.
func (f Format) Decode(ctx serde.Context, data []byte) (serde.Message, error) {
	if f.Call != nil {
		f.Call.Add(ctx, data)
	}

	return f.Msg, f.err
}
