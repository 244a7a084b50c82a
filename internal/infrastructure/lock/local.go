// Package lock implementa inventory.Locker en proceso y sobre Redis.
package lock

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

var _ inventory.Locker = (*Local)(nil)

// Local bloqueo por clave dentro del proceso. Una clave sin espera pendiente se libera del mapa.
type Local struct {
	mu      sync.Mutex
	locks   map[string]*entry
	timeout time.Duration
}

type entry struct {
	ch   chan struct{}
	refs int
}

// NewLocal crea el locker; timeout es la espera máxima antes de devolver domain.ErrBusy.
func NewLocal(timeout time.Duration) *Local {
	return &Local{locks: make(map[string]*entry), timeout: timeout}
}

// Acquire espera el bloqueo de key hasta timeout.
func (l *Local) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	timer := time.NewTimer(l.timeout)
	defer timer.Stop()

	select {
	case e.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-e.ch
				l.unref(key, e)
			})
		}, nil
	case <-timer.C:
		l.unref(key, e)
		return nil, domain.ErrBusy
	case <-ctx.Done():
		l.unref(key, e)
		return nil, ctx.Err()
	}
}

func (l *Local) unref(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}
