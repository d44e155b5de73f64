package amqp

import (
	"context"
	"sync"
	"time"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/store"
)

// Publisher sends change messages somewhere.
type Publisher interface {
	PublishStateChanged(ctx context.Context, msg *StateChangedMessage) error
}

const notifierBuffer = 64

// Notifier forwards applied store actions to a Publisher on its own
// goroutine. When the buffer is full new messages are dropped and logged;
// the feed never slows down or fails a dispatch.
type Notifier struct {
	pub     Publisher
	logger  *log.Logger
	timeout time.Duration
	queue   chan *StateChangedMessage

	mu          sync.Mutex
	closed      bool
	dropped     int
	unsubscribe func()
	done        chan struct{}
}

// NewNotifier subscribes to st and starts publishing.
func NewNotifier(st *store.Store, pub Publisher, logger *log.Logger) *Notifier {
	if logger == nil {
		logger = log.Discard()
	}
	n := &Notifier{
		pub:     pub,
		logger:  logger.WithComponent(log.ComponentAMQP),
		timeout: publishTimeout,
		queue:   make(chan *StateChangedMessage, notifierBuffer),
		done:    make(chan struct{}),
	}
	n.unsubscribe = st.Subscribe(n.observe)
	go n.run()
	return n
}

func (n *Notifier) observe(_, next core.AppState, action store.Action) {
	msg := NewStateChangedMessage(string(action.Type()), next)

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	select {
	case n.queue <- msg:
	default:
		n.dropped++
		n.logger.Warn("Change feed buffer full, dropping message",
			log.FieldAction, msg.Action,
			"dropped", n.dropped)
	}
}

func (n *Notifier) run() {
	defer close(n.done)
	for msg := range n.queue {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		if err := n.pub.PublishStateChanged(ctx, msg); err != nil {
			n.logger.Error("Failed to publish state change",
				log.FieldOperation, log.OpPublish,
				log.FieldAction, msg.Action,
				log.FieldError, err)
		}
		cancel()
	}
}

// Dropped returns how many messages were discarded because the buffer was
// full.
func (n *Notifier) Dropped() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.dropped
}

// Close unsubscribes and waits for queued messages to be published.
func (n *Notifier) Close() error {
	n.unsubscribe()
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()
	<-n.done
	return nil
}
