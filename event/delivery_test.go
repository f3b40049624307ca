// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package event

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSubscriber struct {
	closed bool
}

func (f *failingSubscriber) Deliver(Event) error {
	return errors.New("deliver failed")
}

func (f *failingSubscriber) Close() {
	f.closed = true
}

type panickingSubscriber struct {
	closed bool
}

func (p *panickingSubscriber) Deliver(Event) error {
	panic("remote subscriber failure")
}

func (p *panickingSubscriber) Close() {
	p.closed = true
}

func TestDeliverFailureUnregisters(t *testing.T) {
	eb := NewEventBus(nil, nil)
	defer eb.Stop()
	failing := &failingSubscriber{}
	panicking := &panickingSubscriber{}
	failId := eb.RegisterSubscriber(VoteCastEventType, failing)
	panicId := eb.RegisterSubscriber(VoteCastEventType, panicking)
	require.NotZero(t, failId)
	require.NotEqual(t, failId, panicId)

	eb.Publish(VoteCastEventType, NewEvent(VoteCastEventType, VoteCastEvent{}, 0))

	eb.mu.RLock()
	_, ok := eb.topics[VoteCastEventType]
	eb.mu.RUnlock()
	assert.False(t, ok, "failed subscribers should be removed")
	assert.True(t, failing.closed)
	assert.True(t, panicking.closed)
}

func newTestChannelSubscriber(buffer int) *channelSubscriber {
	return &channelSubscriber{ch: make(chan Event, buffer)}
}

func TestChannelSubscriberDropsWhenFull(t *testing.T) {
	const bufferSize = 5
	sub := newTestChannelSubscriber(bufferSize)
	for i := range bufferSize {
		require.NoError(t, sub.Deliver(NewEvent(StakedEventType, i, 0)))
	}
	done := make(chan error, 1)
	go func() {
		done <- sub.Deliver(NewEvent(StakedEventType, "overflow", 0))
	}()
	select {
	case err := <-done:
		require.ErrorIs(t, err, errDropped)
	case <-time.After(time.Second):
		t.Fatal("Deliver blocked on a full buffer")
	}
	assert.Equal(t, uint64(1), sub.dropped.Load())
	for i := range bufferSize {
		evt := <-sub.ch
		assert.Equal(t, i, evt.Data)
	}
	select {
	case evt := <-sub.ch:
		t.Fatalf("unexpected extra event %v", evt)
	default:
	}
}

func TestFullSubscriberStaysRegistered(t *testing.T) {
	eb := NewEventBus(nil, nil)
	defer eb.Stop()
	id, ch := eb.Subscribe(StakedEventType)
	for i := range EventQueueSize + 3 {
		eb.Publish(StakedEventType, NewEvent(StakedEventType, i, 0))
	}
	eb.mu.RLock()
	_, ok := eb.topics[StakedEventType][id]
	eb.mu.RUnlock()
	assert.True(t, ok)
	assert.Len(t, ch, EventQueueSize)
}

func TestChannelSubscriberDeliverAfterClose(t *testing.T) {
	sub := newTestChannelSubscriber(5)
	sub.Close()
	sub.Close()
	require.NoError(t, sub.Deliver(NewEvent(StakedEventType, "after-close", 0)))
}
