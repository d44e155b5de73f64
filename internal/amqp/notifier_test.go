package amqp

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
	"ledger/internal/store"
)

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*StateChangedMessage
	err  error
	gate chan struct{}
}

func (p *recordingPublisher) PublishStateChanged(_ context.Context, msg *StateChangedMessage) error {
	if p.gate != nil {
		<-p.gate
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return p.err
}

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.msgs))
	for i, m := range p.msgs {
		out[i] = m.Action
	}
	return out
}

func TestNotifierPublishesAppliedActions(t *testing.T) {
	st := store.New(core.InitialState())
	pub := &recordingPublisher{}
	n := NewNotifier(st, pub, nil)

	st.Dispatch(store.AddCategory{Name: "Pets"})
	st.Dispatch(store.AddCategory{Name: "Pets"}) // unchanged, not published
	st.Dispatch(store.DeleteBudget{ID: "nope"})  // unchanged, not published
	st.Dispatch(store.AddBudget{Budget: core.Budget{ID: "b1", Category: "Pets", Limit: core.MoneyFromInt(5)}})
	require.NoError(t, n.Close())

	assert.Equal(t, []string{"ADD_CATEGORY", "ADD_BUDGET"}, pub.actions())
	last := pub.msgs[1]
	require.Len(t, last.Budgets, 1)
	assert.Contains(t, last.Categories, "Pets")
}

func TestNotifierSurvivesPublishErrors(t *testing.T) {
	st := store.New(core.InitialState())
	pub := &recordingPublisher{err: errors.New("broker down")}
	n := NewNotifier(st, pub, nil)

	out := st.Dispatch(store.AddCategory{Name: "Pets"})
	assert.True(t, out.Changed())
	require.NoError(t, n.Close())

	assert.Len(t, pub.actions(), 1)
	assert.True(t, st.State().HasCategory("Pets"))
}

func TestNotifierDropsWhenFull(t *testing.T) {
	st := store.New(core.InitialState())
	pub := &recordingPublisher{gate: make(chan struct{})}
	n := NewNotifier(st, pub, nil)

	// One message is held by the blocked publisher, the buffer takes
	// notifierBuffer more, the rest are dropped.
	total := notifierBuffer + 10
	for i := range total {
		st.Dispatch(store.AddCategory{Name: string(rune('a'+i%26)) + string(rune('A'+i/26))})
	}
	assert.GreaterOrEqual(t, n.Dropped(), total-notifierBuffer-1)

	close(pub.gate)
	require.NoError(t, n.Close())
	assert.Equal(t, total-n.Dropped(), len(pub.actions()))
}

func TestNotifierCloseStopsForwarding(t *testing.T) {
	st := store.New(core.InitialState())
	pub := &recordingPublisher{}
	n := NewNotifier(st, pub, nil)
	require.NoError(t, n.Close())

	st.Dispatch(store.AddCategory{Name: "Late"})
	assert.Empty(t, pub.actions())
}
