// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mandel

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
)

// mockAccelerator implements Accelerator for testing.
type mockAccelerator struct {
	name      string
	available bool
	submit    func(ctx context.Context, p Params) ([]uint32, error)
	logger    *slog.Logger

	mu      sync.Mutex
	submits int
}

func (m *mockAccelerator) Name() string             { return m.name }
func (m *mockAccelerator) Init() error              { return nil }
func (m *mockAccelerator) Close()                   { m.available = false }
func (m *mockAccelerator) IsAvailable() bool        { return m.available }
func (m *mockAccelerator) SetLogger(l *slog.Logger) { m.logger = l }

func (m *mockAccelerator) Submit(ctx context.Context, p Params) ([]uint32, error) {
	m.mu.Lock()
	m.submits++
	m.mu.Unlock()
	if m.submit == nil {
		g, err := EvaluateReference(p.Width, p.Height, p.MaxIter)
		if err != nil {
			return nil, err
		}
		return g.Counts, nil
	}
	return m.submit(ctx, p)
}

func (m *mockAccelerator) submitCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submits
}

func TestParallelInvalidParams(t *testing.T) {
	mock := &mockAccelerator{name: "mock", available: true}
	ev := NewParallel(mock)

	for _, p := range []Params{
		{Width: 0, Height: 8, MaxIter: 8},
		{Width: 8, Height: -1, MaxIter: 8},
		{Width: 8, Height: 8, MaxIter: -1},
	} {
		g, err := ev.Evaluate(context.Background(), p)
		if g != nil || !errors.Is(err, ErrInvalidParameters) {
			t.Errorf("Evaluate(%s) = (%v, %v), want ErrInvalidParameters", p, g, err)
		}
	}
	if n := mock.submitCount(); n != 0 {
		t.Errorf("Submit called %d times for invalid parameters", n)
	}
}

func TestParallelUnavailable(t *testing.T) {
	p := Params{Width: 4, Height: 4, MaxIter: 4}

	t.Run("nil accelerator", func(t *testing.T) {
		_, err := NewParallel(nil).Evaluate(context.Background(), p)
		if !errors.Is(err, ErrUnavailableAccelerator) {
			t.Errorf("err = %v, want ErrUnavailableAccelerator", err)
		}
	})

	t.Run("not available", func(t *testing.T) {
		mock := &mockAccelerator{name: "mock"}
		_, err := NewParallel(mock).Evaluate(context.Background(), p)
		if !errors.Is(err, ErrUnavailableAccelerator) {
			t.Errorf("err = %v, want ErrUnavailableAccelerator", err)
		}
		if mock.submitCount() != 0 {
			t.Error("Submit called on unavailable accelerator")
		}
	})

	t.Run("closed cpu", func(t *testing.T) {
		a := NewCPUAccelerator()
		a.Close()
		_, err := NewParallel(a).Evaluate(context.Background(), p)
		if !errors.Is(err, ErrUnavailableAccelerator) {
			t.Errorf("err = %v, want ErrUnavailableAccelerator", err)
		}
	})

	t.Run("invalid wins over unavailable", func(t *testing.T) {
		_, err := NewParallel(nil).Evaluate(context.Background(), Params{})
		if !errors.Is(err, ErrInvalidParameters) {
			t.Errorf("err = %v, want ErrInvalidParameters", err)
		}
	})
}

func TestParallelFailureClassification(t *testing.T) {
	p := Params{Width: 4, Height: 4, MaxIter: 4}
	deviceLost := errors.New("device lost")

	tests := []struct {
		name    string
		submit  func(context.Context, Params) ([]uint32, error)
		wantErr error
	}{
		{
			name:    "raw error wrapped",
			submit:  func(context.Context, Params) ([]uint32, error) { return nil, deviceLost },
			wantErr: ErrAcceleratorFailure,
		},
		{
			name:    "short output",
			submit:  func(context.Context, Params) ([]uint32, error) { return make([]uint32, 3), nil },
			wantErr: ErrAcceleratorFailure,
		},
		{
			name: "unavailable passes through",
			submit: func(context.Context, Params) ([]uint32, error) {
				return nil, ErrUnavailableAccelerator
			},
			wantErr: ErrUnavailableAccelerator,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockAccelerator{name: "mock", available: true, submit: tt.submit}
			g, err := NewParallel(mock).Evaluate(context.Background(), p)
			if g != nil {
				t.Error("failed evaluation returned a grid")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if mock.submitCount() != 1 {
				t.Errorf("Submit called %d times, want exactly 1 (no retries)", mock.submitCount())
			}
		})
	}

	// The original cause stays reachable.
	mock := &mockAccelerator{name: "mock", available: true,
		submit: func(context.Context, Params) ([]uint32, error) { return nil, deviceLost }}
	_, err := NewParallel(mock).Evaluate(context.Background(), p)
	if !errors.Is(err, deviceLost) {
		t.Errorf("err = %v, want it to wrap the device error", err)
	}
}

func TestCPUAcceleratorCancelled(t *testing.T) {
	a := NewCPUAccelerator(WithWorkers(2), WithBlockRows(1))
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g, err := NewParallel(a).Evaluate(ctx, Params{Width: 64, Height: 64, MaxIter: 64})
	if g != nil {
		t.Error("cancelled evaluation returned a grid")
	}
	if !errors.Is(err, ErrAcceleratorFailure) || !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want ErrAcceleratorFailure wrapping context.Canceled", err)
	}
}

func TestCPUAcceleratorOptions(t *testing.T) {
	a := NewCPUAccelerator(WithWorkers(3), WithBlockRows(0))
	defer a.Close()
	if a.Workers() != 3 {
		t.Errorf("Workers() = %d, want 3", a.Workers())
	}
	if a.blockRows != 8 {
		t.Errorf("blockRows = %d, want default 8", a.blockRows)
	}
	if a.Name() != "cpu" {
		t.Errorf("Name() = %q, want cpu", a.Name())
	}
}

func TestCPUAcceleratorReinit(t *testing.T) {
	a := NewCPUAccelerator(WithWorkers(2))
	if !a.IsAvailable() {
		t.Fatal("new accelerator should be available")
	}
	a.Close()
	a.Close()
	if a.IsAvailable() || a.Workers() != 0 {
		t.Fatal("closed accelerator should be unavailable")
	}
	if err := a.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer a.Close()
	if !a.IsAvailable() {
		t.Error("re-initialised accelerator should be available")
	}
}

func TestCPUAcceleratorConcurrentSubmit(t *testing.T) {
	a := NewCPUAccelerator(WithWorkers(4), WithBlockRows(2))
	defer a.Close()
	ev := NewParallel(a)

	p := Params{Width: 48, Height: 40, MaxIter: 100}
	want, err := EvaluateReference(p.Width, p.Height, p.MaxIter)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g, err := ev.Evaluate(context.Background(), p)
			if err != nil {
				t.Errorf("Evaluate: %v", err)
				return
			}
			if !g.Equal(want) {
				t.Errorf("concurrent evaluation differs in %d cells", g.Mismatches(want))
			}
		}()
	}
	wg.Wait()
}

func TestFallback(t *testing.T) {
	p := Params{Width: 8, Height: 8, MaxIter: 16}
	want, _ := EvaluateReference(p.Width, p.Height, p.MaxIter)

	t.Run("falls back when unavailable", func(t *testing.T) {
		f := Fallback{Primary: NewParallel(&mockAccelerator{name: "gpu"}), Secondary: Reference{}}
		g, err := f.Evaluate(context.Background(), p)
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		if !g.Equal(want) {
			t.Error("fallback grid differs from reference")
		}
		if f.Name() != "gpu" {
			t.Errorf("Name() = %q, want gpu", f.Name())
		}
	})

	t.Run("no fallback on failure", func(t *testing.T) {
		mock := &mockAccelerator{name: "gpu", available: true,
			submit: func(context.Context, Params) ([]uint32, error) { return nil, ErrAcceleratorFailure }}
		sec := &mockAccelerator{name: "secondary", available: true}
		f := Fallback{Primary: NewParallel(mock), Secondary: NewParallel(sec)}
		if _, err := f.Evaluate(context.Background(), p); !errors.Is(err, ErrAcceleratorFailure) {
			t.Errorf("err = %v, want ErrAcceleratorFailure", err)
		}
		if sec.submitCount() != 0 {
			t.Error("secondary ran after a failure")
		}
	})

	t.Run("no fallback on invalid parameters", func(t *testing.T) {
		f := Fallback{Primary: NewParallel(nil), Secondary: Reference{}}
		if _, err := f.Evaluate(context.Background(), Params{Width: -1, Height: 1}); !errors.Is(err, ErrInvalidParameters) {
			t.Errorf("err = %v, want ErrInvalidParameters", err)
		}
	})

	t.Run("nil primary uses secondary", func(t *testing.T) {
		f := Fallback{Secondary: Reference{}}
		if f.Name() != "reference" {
			t.Errorf("Name() = %q, want reference", f.Name())
		}
		g, err := f.Evaluate(context.Background(), p)
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		if !g.Equal(want) {
			t.Error("grid differs from reference")
		}
	})

	t.Run("nil primary and secondary", func(t *testing.T) {
		var f Fallback
		if f.Name() != "none" {
			t.Errorf("Name() = %q, want none", f.Name())
		}
		if _, err := f.Evaluate(context.Background(), p); !errors.Is(err, ErrUnavailableAccelerator) {
			t.Errorf("err = %v, want ErrUnavailableAccelerator", err)
		}
		if _, err := f.Evaluate(context.Background(), Params{Width: 0, Height: 1}); !errors.Is(err, ErrInvalidParameters) {
			t.Errorf("err = %v, want ErrInvalidParameters", err)
		}
	})
}

func TestEvaluateParallelFreeFunction(t *testing.T) {
	a := NewCPUAccelerator()
	defer a.Close()
	g, err := EvaluateParallel(context.Background(), a, 16, 9, 32)
	if err != nil {
		t.Fatalf("EvaluateParallel: %v", err)
	}
	want, _ := EvaluateReference(16, 9, 32)
	if !g.Equal(want) {
		t.Errorf("EvaluateParallel differs from reference in %d cells", g.Mismatches(want))
	}
}
