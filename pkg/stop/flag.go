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

// Package stop propagates interrupt requests through a tree of flags.
// A soft stop asks the owner to finish what it is doing and not start
// anything new, a hard stop cancels in-flight work.
package stop

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"go.uber.org/zap"
)

const (
	SignalNoop uint32 = iota
	SignalSoftStop
	SignalHardStop
)

type Flag struct {
	log      *zap.Logger
	parent   *Flag
	done     chan struct{}
	name     string
	children []*Flag
	handlers []func(signal uint32)
	mu       sync.Mutex
	once     sync.Once
	val      atomic.Uint32
}

func NewFlag(name string) *Flag {
	return newFlag(name, nil)
}

func newFlag(name string, parent *Flag) *Flag {
	return &Flag{
		name:   name,
		parent: parent,
		log:    zap.NewNop(),
		done:   make(chan struct{}),
	}
}

func (s *Flag) Name() string {
	return s.name
}

func (s *Flag) SetLogger(log *zap.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = log
}

// CreateChild returns a flag that receives every signal sent to s. A child
// created after s was signalled starts out signalled.
func (s *Flag) CreateChild(name string) *Flag {
	child := newFlag(name, s)

	s.mu.Lock()
	child.log = s.log
	s.children = append(s.children, child)
	s.mu.Unlock()

	if val := s.val.Load(); val != SignalNoop {
		child.send(val, false)
	}
	return child
}

// send moves the flag to signal. A soft flag can still be escalated to hard,
// nothing else changes a signalled flag.
func (s *Flag) send(signal uint32, toParent bool) bool {
	for {
		current := s.val.Load()
		if current >= signal {
			return false
		}
		if s.val.CompareAndSwap(current, signal) {
			break
		}
	}

	s.once.Do(func() { close(s.done) })

	s.mu.Lock()
	log := s.log
	handlers := append([]func(uint32){}, s.handlers...)
	children := append([]*Flag{}, s.children...)
	s.mu.Unlock()

	log.Debug("stop flag signalled", zap.String("flag", s.name), zap.String("signal", GetStateName(signal)))

	for _, handler := range handlers {
		handler(signal)
	}
	for _, child := range children {
		child.send(signal, false)
	}
	if toParent && s.parent != nil {
		s.parent.send(signal, true)
	}
	return true
}

func (s *Flag) SetSoft(toParent bool) bool {
	return s.send(SignalSoftStop, toParent)
}

func (s *Flag) SetHard(toParent bool) bool {
	return s.send(SignalHardStop, toParent)
}

func (s *Flag) IsSoft() bool {
	return s.val.Load() == SignalSoftStop
}

func (s *Flag) IsHard() bool {
	return s.val.Load() == SignalHardStop
}

func (s *Flag) IsHardOrSoft() bool {
	return s.val.Load() != SignalNoop
}

// Done is closed on the first signal of any kind.
func (s *Flag) Done() <-chan struct{} {
	return s.done
}

// AddHandler registers handler for every later signal; it runs right away
// when the flag is already signalled.
func (s *Flag) AddHandler(handler func(signal uint32)) {
	s.mu.Lock()
	s.handlers = append(s.handlers, handler)
	s.mu.Unlock()

	if val := s.val.Load(); val != SignalNoop {
		handler(val)
	}
}

// CancelContextOnSignal derives a context that is cancelled once the flag
// reaches expectedSignal or a stronger one. SignalNoop cancels on any
// signal.
func (s *Flag) CancelContextOnSignal(ctx context.Context, expectedSignal uint32) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	s.AddHandler(func(signal uint32) {
		if signal >= expectedSignal {
			cancel()
		}
	})
	return ctx
}

// StartOsSignalsTransmitter turns the first SIGINT or SIGTERM into a soft
// stop and the next one into a hard stop of flags.
func StartOsSignalsTransmitter(logger *zap.Logger, flags ...*Flag) {
	graceful := make(chan os.Signal, 2)
	signal.Notify(graceful, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		sig := <-graceful
		logger.Info("received signal, finishing the current measurement", zap.Stringer("signal", sig))
		for _, f := range flags {
			f.SetSoft(true)
		}

		sig = <-graceful
		logger.Info("received signal again, aborting", zap.Stringer("signal", sig))
		for _, f := range flags {
			f.SetHard(true)
		}
		signal.Stop(graceful)
	}()
}

// IgnoreOsSignals detaches the process from terminal interrupts. A forked
// child shares its parent's process group, so every Ctrl-C reaches it too;
// the parent alone decides when the child stops and kills it on a hard stop.
func IgnoreOsSignals() {
	signal.Ignore(syscall.SIGTERM, syscall.SIGINT)
}

func GetStateName(state uint32) string {
	switch state {
	case SignalSoftStop:
		return "soft"
	case SignalHardStop:
		return "hard"
	case SignalNoop:
		return "no-signal"
	default:
		panic(fmt.Sprintf("unexpected signal %d", state))
	}
}
