// Copyright 2025 ScyllaDB
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package workpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/samber/mo"
	"go.uber.org/zap"

	"github.com/scylladb/rngbench/pkg/metrics"
)

const ChannelSizeMultiplier = 4

var ErrClosed = errors.New("workpool is closed")

type (
	Task func(context.Context) (any, error)

	item struct {
		ctx context.Context
		ch  chan<- mo.Result[any]
		cb  Task
	}

	// Pool runs submitted tasks on a fixed number of goroutines.
	Pool struct {
		chPool  sync.Pool
		ch      atomic.Pointer[chan item]
		logger  *zap.Logger
		queue   metrics.QueueMetrics
		wg      sync.WaitGroup
		mu      sync.RWMutex
		closed  atomic.Bool
		workers int
	}
)

func New(name string, count int, logger *zap.Logger) *Pool {
	if count < 1 {
		panic("count must be at least 1")
	}

	if logger == nil {
		logger = zap.L()
	}
	logger = logger.Named("workpool").With(zap.String("pool", name))

	logger.Debug("creating workpool",
		zap.Int("worker_count", count),
		zap.Int("channel_size", count*ChannelSizeMultiplier),
	)

	metrics.Information.WithLabelValues(name + "_workers").Set(float64(count))

	ch := make(chan item, count*ChannelSizeMultiplier)

	w := &Pool{
		chPool: sync.Pool{
			New: func() any {
				return make(chan mo.Result[any], 1)
			},
		},
		logger:  logger,
		queue:   metrics.NewQueueMetrics(name),
		workers: count,
	}

	w.ch.Store(&ch)

	for i := range count {
		w.wg.Add(1)
		go w.work(i, ch)
	}

	return w
}

func (w *Pool) Workers() int {
	return w.workers
}

func (w *Pool) work(id int, ch <-chan item) {
	defer w.wg.Done()

	w.logger.Debug("worker started", zap.Int("worker_id", id))
	for it := range ch {
		w.queue.Dec()
		w.execute(it)
	}
	w.logger.Debug("worker shutting down", zap.Int("worker_id", id))
}

func (w *Pool) execute(it item) {
	// a task whose submitter already gave up is not worth running
	if err := it.ctx.Err(); err != nil {
		it.ch <- mo.Err[any](err)
		return
	}

	v, err := it.cb(it.ctx)

	result := mo.Ok[any](v)
	if err != nil {
		result = mo.Err[any](err)
	}

	// the result channel is buffered with size 1, so this never blocks
	it.ch <- result
}

// Send queues callback and returns the channel its single result will be
// delivered on. Hand the channel back with Release once it has been read.
func (w *Pool) Send(ctx context.Context, callback Task) chan mo.Result[any] {
	if callback == nil {
		panic("cb must not be nil")
	}

	ch := w.chPool.Get().(chan mo.Result[any])

	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed.Load() {
		w.logger.Warn("attempt to send to closed workpool")
		ch <- mo.Err[any](ErrClosed)
		return ch
	}

	sendCh := w.ch.Load()
	if sendCh == nil {
		ch <- mo.Err[any](ErrClosed)
		return ch
	}

	if err := ctx.Err(); err != nil {
		ch <- mo.Err[any](err)
		return ch
	}

	it := item{
		ch:  ch,
		cb:  callback,
		ctx: ctx,
	}

	select {
	case *sendCh <- it:
		w.queue.Inc()
	case <-ctx.Done():
		ch <- mo.Err[any](ctx.Err())
	}

	return ch
}

func (w *Pool) Release(ch chan mo.Result[any]) {
	if ch == nil {
		return
	}

	select {
	case <-ch:
	default:
	}

	w.chPool.Put(ch)
}

// Close stops accepting tasks and waits for the queued ones to finish.
func (w *Pool) Close() error {
	w.mu.Lock()

	if w.closed.Load() {
		w.mu.Unlock()
		return nil
	}

	w.closed.Store(true)
	if ch := w.ch.Swap(nil); ch != nil {
		close(*ch)
	}
	w.mu.Unlock()

	w.wg.Wait()
	w.logger.Debug("workpool closed")
	return nil
}
