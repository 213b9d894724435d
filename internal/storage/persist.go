// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/cody/internal/mode"
	"github.com/jeranaias/cody/internal/notify"
)

// persistTimeout bounds a single settings write made from a notification.
const persistTimeout = 2 * time.Second

// SettingsWriter is the part of SettingsStore that Persist writes through.
type SettingsWriter interface {
	SaveMode(ctx context.Context, m mode.Mode) error
	SaveSize(ctx context.Context, size int) error
}

// pending holds the newest unwritten values. Older values are overwritten,
// so a burst of changes costs at most one write per setting.
type pending struct {
	mu   sync.Mutex
	mode *mode.Mode
	size *int
}

func (p *pending) take() (*mode.Mode, *int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, s := p.mode, p.size
	p.mode, p.size = nil, nil
	return m, s
}

// Persist subscribes to mode and size notifications on bus and writes each
// committed value to store on a background goroutine, so publishers never
// wait on the disk. Only the newest value of each setting is written.
// Write failures are logged, never returned.
//
// The returned function detaches the subscriber, flushes anything still
// pending and stops the goroutine. Call it before closing store.
func Persist(bus *notify.Bus, store SettingsWriter, logger *zap.Logger) (detach func()) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("storage")

	var (
		p    pending
		wake = make(chan struct{}, 1)
		done = make(chan struct{})
		wg   sync.WaitGroup
	)

	unsubscribe := bus.Subscribe(func(e notify.Event) {
		switch e.Name {
		case notify.ModeChanged:
			m, ok := e.Payload.(mode.Mode)
			if !ok {
				logger.Warn("unexpected payload", zap.String("event", string(e.Name)), zap.Any("payload", e.Payload))
				return
			}
			p.mu.Lock()
			p.mode = &m
			p.mu.Unlock()
		case notify.SizeChanged:
			size, ok := e.Payload.(int)
			if !ok {
				logger.Warn("unexpected payload", zap.String("event", string(e.Name)), zap.Any("payload", e.Payload))
				return
			}
			p.mu.Lock()
			p.size = &size
			p.mu.Unlock()
		}

		select {
		case wake <- struct{}{}:
		default:
		}
	}, notify.ModeChanged, notify.SizeChanged)

	flush := func() {
		m, size := p.take()
		if m != nil {
			write(store.SaveMode, *m, notify.ModeChanged, logger)
		}
		if size != nil {
			write(store.SaveSize, *size, notify.SizeChanged, logger)
		}
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-wake:
				flush()
			case <-done:
				flush()
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()
			close(done)
			wg.Wait()
		})
	}
}

func write[T any](save func(context.Context, T) error, v T, event notify.Name, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := save(ctx, v); err != nil {
		logger.Warn("failed to persist setting", zap.String("event", string(event)), zap.Error(err))
		return
	}
	logger.Debug("setting persisted", zap.String("event", string(event)), zap.Any("value", v))
}
