// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package sse fans out server-sent events to the subscribers of message threads.
package sse

import (
	"fmt"
	"sync"

	"github.com/samber/lo"
)

// client represents a connected SSE client with its channel and subscriber key.
type client struct {
	ch         chan string
	subscriber string
}

// Hub manages SSE clients per topic and subscriber.
// A topic is a message thread; a subscriber is one identity, which may hold
// several connections (tabs, devices) to several topics.
type Hub struct {
	clients          map[string][]client
	subscriberTopics map[string][]string
	mu               sync.RWMutex
	bufferSize       int
}

// NewHub creates a new SSE hub.
func NewHub() *Hub {
	return &Hub{
		clients:          make(map[string][]client),
		subscriberTopics: make(map[string][]string),
		bufferSize:       16,
	}
}

// ThreadTopic names the topic of the message thread of an internship.
func ThreadTopic(internshipID int64) string {
	return fmt.Sprintf("internship:%d", internshipID)
}

// SubscriberKey names a subscriber by role and id.
func SubscriberKey(role string, id int64) string {
	return fmt.Sprintf("%s:%d", role, id)
}

// Subscribe adds a new client channel for topic.
// Returns the channel to receive events on.
func (h *Hub) Subscribe(topic, subscriber string) chan string {
	ch := make(chan string, h.bufferSize)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[topic] = append(h.clients[topic], client{ch: ch, subscriber: subscriber})

	if !lo.Contains(h.subscriberTopics[subscriber], topic) {
		h.subscriberTopics[subscriber] = append(h.subscriberTopics[subscriber], topic)
	}

	return ch
}

// Unsubscribe removes a client channel and closes it.
func (h *Hub) Unsubscribe(topic, subscriber string, ch chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[topic] = lo.Filter(h.clients[topic], func(c client, _ int) bool {
		return c.ch != ch
	})

	stillSubscribed := lo.ContainsBy(h.clients[topic], func(c client) bool {
		return c.subscriber == subscriber
	})
	if len(h.clients[topic]) == 0 {
		delete(h.clients, topic)
	}
	if !stillSubscribed {
		h.subscriberTopics[subscriber] = lo.Without(h.subscriberTopics[subscriber], topic)
		if len(h.subscriberTopics[subscriber]) == 0 {
			delete(h.subscriberTopics, subscriber)
		}
	}

	close(ch)
}

// Publish sends a message to all clients of topic.
// Slow clients with a full buffer miss the message instead of blocking the sender.
func (h *Hub) Publish(topic string, message string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, c := range h.clients[topic] {
		select {
		case c.ch <- message:
			delivered++
		default:
		}
	}
	return delivered
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return lo.SumBy(lo.Values(h.clients), func(clients []client) int {
		return len(clients)
	})
}

// TopicCount returns the number of topics with active connections.
func (h *Hub) TopicCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// SubscriberCount returns the number of unique subscribers with active connections.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscriberTopics)
}
