package mutation

import (
	"context"
	"math/rand/v2"
	"time"
)

// Latency é a fronteira assíncrona que simula a ida ao servidor. Uma
// implementação real pode trocar a espera por I/O de verdade.
type Latency interface {
	Wait(ctx context.Context) error
}

// NoDelay não espera.
type NoDelay struct{}

func (NoDelay) Wait(ctx context.Context) error { return ctx.Err() }

// Fixed espera sempre a mesma duração.
type Fixed time.Duration

func (d Fixed) Wait(ctx context.Context) error {
	return sleep(ctx, time.Duration(d))
}

// Jitter espera Base mais um acréscimo pseudoaleatório em [0, Spread).
type Jitter struct {
	Base   time.Duration
	Spread time.Duration
}

func (j Jitter) Wait(ctx context.Context) error {
	d := j.Base
	if j.Spread > 0 {
		d += time.Duration(rand.Int64N(int64(j.Spread)))
	}
	return sleep(ctx, d)
}

// NewLatency escolhe a implementação adequada à configuração.
func NewLatency(base, spread time.Duration) Latency {
	switch {
	case base <= 0 && spread <= 0:
		return NoDelay{}
	case spread <= 0:
		return Fixed(base)
	default:
		return Jitter{Base: base, Spread: spread}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
