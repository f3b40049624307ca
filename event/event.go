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
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EventQueueSize is the buffer of each channel subscriber
const EventQueueSize = 20

const (
	subscriberKindChannel = "in-memory"
	subscriberKindRemote  = "remote"
)

type EventType string

type EventSubscriberId int

type EventHandlerFunc func(Event)

type Event struct {
	Timestamp time.Time
	Data      any
	Type      EventType
}

// NewEvent returns an event stamped with the instruction time rather than the
// wall clock, so replaying the journal yields identical events
func NewEvent(eventType EventType, eventData any, now int64) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Unix(now, 0).UTC(),
		Data:      eventData,
	}
}

// Subscriber receives events from the bus. Close must be idempotent
type Subscriber interface {
	Deliver(Event) error
	Close()
}

type subscription struct {
	sub  Subscriber
	kind string
}

// EventBus fans committed instruction events out to subscribers. Publish is
// synchronous; slow consumers only lose events from their own buffer
type EventBus struct {
	mu      sync.RWMutex
	topics  map[EventType]map[EventSubscriberId]subscription
	nextId  EventSubscriberId
	stopped bool
	metrics *eventMetrics
	logger  *slog.Logger
}

func NewEventBus(
	promRegistry prometheus.Registerer,
	logger *slog.Logger,
) *EventBus {
	if logger == nil {
		logger = slog.Default()
	}
	e := &EventBus{
		topics: make(map[EventType]map[EventSubscriberId]subscription),
		logger: logger.With("component", "event"),
	}
	if promRegistry != nil {
		e.initMetrics(promRegistry)
	}
	return e
}

// channelSubscriber delivers into a buffered channel. A full buffer drops the
// event instead of stalling the processor
type channelSubscriber struct {
	ch      chan Event
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

func (c *channelSubscriber) Deliver(evt Event) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil
	}
	select {
	case c.ch <- evt:
		return nil
	default:
		c.dropped.Add(1)
		return errDropped
	}
}

func (c *channelSubscriber) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.ch)
	}
}

// errDropped marks a full channel buffer. It is counted but does not
// unregister the subscriber
var errDropped = errors.New("subscriber buffer full")

func (e *EventBus) add(
	eventType EventType,
	sub Subscriber,
	kind string,
) EventSubscriberId {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		sub.Close()
		return 0
	}
	e.nextId++
	id := e.nextId
	subs, ok := e.topics[eventType]
	if !ok {
		subs = make(map[EventSubscriberId]subscription)
		e.topics[eventType] = subs
	}
	subs[id] = subscription{sub: sub, kind: kind}
	e.mu.Unlock()
	if e.metrics != nil {
		e.metrics.subscribers.WithLabelValues(string(eventType), kind).Inc()
	}
	return id
}

// Subscribe returns a channel receiving events of the given type. On a
// stopped bus the channel is already closed
func (e *EventBus) Subscribe(
	eventType EventType,
) (EventSubscriberId, <-chan Event) {
	sub := &channelSubscriber{ch: make(chan Event, EventQueueSize)}
	return e.add(eventType, sub, subscriberKindChannel), sub.ch
}

// SubscribeFunc runs handlerFunc for each event of the given type on a
// dedicated goroutine. A panicking handler does not stop later deliveries
func (e *EventBus) SubscribeFunc(
	eventType EventType,
	handlerFunc EventHandlerFunc,
) EventSubscriberId {
	id, evtCh := e.Subscribe(eventType)
	go func() {
		for evt := range evtCh {
			e.runHandler(handlerFunc, evt)
		}
	}()
	return id
}

func (e *EventBus) runHandler(handlerFunc EventHandlerFunc, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error(
				"event handler panic",
				"type", evt.Type,
				"panic", r,
			)
		}
	}()
	handlerFunc(evt)
}

// RegisterSubscriber adds an externally implemented subscriber
func (e *EventBus) RegisterSubscriber(
	eventType EventType,
	sub Subscriber,
) EventSubscriberId {
	return e.add(eventType, sub, subscriberKindRemote)
}

// Unsubscribe removes a subscriber and closes it
func (e *EventBus) Unsubscribe(eventType EventType, subId EventSubscriberId) {
	e.mu.Lock()
	entry, ok := e.topics[eventType][subId]
	if ok {
		delete(e.topics[eventType], subId)
		if len(e.topics[eventType]) == 0 {
			delete(e.topics, eventType)
		}
	}
	e.mu.Unlock()
	if !ok {
		return
	}
	if e.metrics != nil {
		e.metrics.subscribers.WithLabelValues(string(eventType), entry.kind).Dec()
	}
	entry.sub.Close()
}

// Publish delivers an event to all subscribers of its type. Subscribers that
// return an error or panic are unregistered
func (e *EventBus) Publish(eventType EventType, evt Event) {
	e.mu.RLock()
	targets := make(map[EventSubscriberId]subscription, len(e.topics[eventType]))
	for id, entry := range e.topics[eventType] {
		targets[id] = entry
	}
	e.mu.RUnlock()
	for id, entry := range targets {
		err := deliver(entry.sub, evt)
		if err == nil {
			continue
		}
		if e.metrics != nil {
			e.metrics.deliveryErrors.WithLabelValues(string(eventType), entry.kind).Inc()
		}
		if errors.Is(err, errDropped) {
			e.logger.Warn("subscriber queue full, dropping event", "type", eventType)
			continue
		}
		e.logger.Debug("event delivery error", "type", eventType, "error", err)
		e.Unsubscribe(eventType, id)
	}
	if e.metrics != nil {
		e.metrics.eventsTotal.WithLabelValues(string(eventType)).Inc()
	}
}

func deliver(sub Subscriber, evt Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber deliver panic: %v", r)
		}
	}()
	return sub.Deliver(evt)
}

// Stop closes every subscriber. Later subscriptions are closed on arrival and
// later publishes reach no one. Repeated calls are no-ops
func (e *EventBus) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	topics := e.topics
	e.topics = make(map[EventType]map[EventSubscriberId]subscription)
	e.mu.Unlock()
	for _, subs := range topics {
		for _, entry := range subs {
			entry.sub.Close()
		}
	}
	if e.metrics != nil {
		e.metrics.subscribers.Reset()
	}
}
