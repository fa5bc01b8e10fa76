// Package testutil provides fakes and assertions shared by the loader tests.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nthnn/ura/domain/entities"
	"github.com/nthnn/ura/domain/errors"
)

// Source is an in-memory BinarySource that records every fetch.
// When Block is non-nil, Fetch waits for it to close or for ctx.
type Source struct {
	Block    chan struct{}
	binaries map[string][]byte
	fetches  []string
	mu       sync.Mutex
}

// NewSource returns an empty Source.
func NewSource() *Source {
	return &Source{binaries: make(map[string][]byte)}
}

// Put stores bin as the binary of the program called name.
func (s *Source) Put(name string, bin []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.binaries[entities.ResourcePath(name)] = bin
}

// Fetch implements ports.BinarySource.
func (s *Source) Fetch(ctx context.Context, path string) ([]byte, error) {
	s.mu.Lock()
	s.fetches = append(s.fetches, path)
	bin, ok := s.binaries[path]
	block := s.Block
	s.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, fs.ErrNotExist)
	}
	return bin, nil
}

// Fetched returns the paths fetched so far, in order.
func (s *Source) Fetched() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.fetches...)
}

// Recorder collects loader stage events.
type Recorder struct {
	events []entities.StageEvent
	mu     sync.Mutex
}

// Observe is a host.Observer.
func (r *Recorder) Observe(ev entities.StageEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []entities.StageEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entities.StageEvent(nil), r.events...)
}

// Trace renders events as "stage:phase", marking failed ends with "!".
func (r *Recorder) Trace() []string {
	events := r.Events()
	out := make([]string, 0, len(events))
	for _, ev := range events {
		s := ev.Stage.String() + ":" + ev.Phase.String()
		if ev.Err != nil {
			s += "!"
		}
		out = append(out, s)
	}
	return out
}

// Last returns the last trace entry, or "" when nothing was recorded.
func (r *Recorder) Last() string {
	trace := r.Trace()
	if len(trace) == 0 {
		return ""
	}
	return trace[len(trace)-1]
}

// SyncBuffer is a bytes.Buffer safe for concurrent writers and readers.
type SyncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (b *SyncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *SyncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// AssertFailedAt asserts that err is a load error raised by stage.
func AssertFailedAt(t *testing.T, err error, stage entities.Stage) {
	t.Helper()
	require.Error(t, err)
	got, ok := errors.StageOf(err)
	require.True(t, ok, "error %v carries no stage", err)
	assert.Equal(t, stage, got)
	assert.Equal(t, stage.String(), errors.ToErrorDetail(err).Stage)
}
