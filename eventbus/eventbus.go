package eventbus

import "sync"

// Bus is the in-process message bus the service registry and the typed
// method brokers are built on. Handlers receive the published value as-is,
// no copies and no serialization.
type Bus interface {
	Publish(topic string, data interface{})
	Subscribe(topic string, fn func(data interface{})) error
	SubscribeAsync(topic string, fn func(data interface{}), transactional bool) error
	SubscribeOnceAsync(topic string, fn func(data interface{})) error
	Unsubscribe(topic string) error
}

type handler struct {
	fn            func(data interface{})
	async         bool
	once          bool
	transactional bool
	mu            sync.Mutex
}

type bus struct {
	mu       sync.Mutex
	handlers map[string][]*handler
}

func New() Bus {
	return &bus{handlers: make(map[string][]*handler)}
}

func (b *bus) Subscribe(topic string, fn func(data interface{})) error {
	b.add(topic, &handler{fn: fn})
	return nil
}

func (b *bus) SubscribeAsync(topic string, fn func(data interface{}), transactional bool) error {
	b.add(topic, &handler{fn: fn, async: true, transactional: transactional})
	return nil
}

func (b *bus) SubscribeOnceAsync(topic string, fn func(data interface{})) error {
	b.add(topic, &handler{fn: fn, async: true, once: true})
	return nil
}

func (b *bus) Unsubscribe(topic string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, topic)
	return nil
}

func (b *bus) add(topic string, h *handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], h)
}

func (b *bus) Publish(topic string, data interface{}) {
	b.mu.Lock()
	subscribed := b.handlers[topic]
	handlers := make([]*handler, 0, len(subscribed))
	remaining := subscribed[:0:0]
	for _, h := range subscribed {
		handlers = append(handlers, h)
		if !h.once {
			remaining = append(remaining, h)
		}
	}
	b.handlers[topic] = remaining
	b.mu.Unlock()

	for _, h := range handlers {
		if !h.async {
			h.fn(data)
			continue
		}
		go func(h *handler) {
			if h.transactional {
				h.mu.Lock()
				defer h.mu.Unlock()
			}
			h.fn(data)
		}(h)
	}
}
