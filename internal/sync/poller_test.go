package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/UgochukwuChidera/studio-sub001/internal/notify"
	"github.com/UgochukwuChidera/studio-sub001/tests/testutil"
)

func newInbox(t *testing.T, opts ...notify.Option) *notify.Inbox {
	t.Helper()
	return notify.NewCenter(testutil.NewTestStore(t), opts...).Inbox("user-1")
}

func add(t *testing.T, in *notify.Inbox, title string) {
	t.Helper()
	_, err := in.System(context.Background(), title, "")
	require.NoError(t, err)
}

func TestPoller_FirstPollRecordsExisting(t *testing.T) {
	in := newInbox(t)
	add(t, in, "one")
	add(t, in, "two")

	p := New(in)
	res := p.Poll(context.Background())

	require.NoError(t, res.Error)
	assert.Equal(t, 2, res.Unread)
	assert.Zero(t, res.New)
	assert.Equal(t, PollIdle, p.Status().State)
	assert.False(t, p.Status().LastPoll.IsZero())
}

func TestPoller_CountsNewSincePreviousPoll(t *testing.T) {
	ctx := context.Background()
	in := newInbox(t)
	add(t, in, "one")

	p := New(in)
	p.Poll(ctx)

	add(t, in, "two")
	add(t, in, "three")
	res := p.Poll(ctx)
	assert.Equal(t, 2, res.New)
	assert.Equal(t, 3, res.Unread)

	require.NoError(t, in.MarkAllRead(ctx))
	res = p.Poll(ctx)
	assert.Zero(t, res.New)
	assert.Zero(t, res.Unread)
}

func TestPoller_AppliesRetention(t *testing.T) {
	in := newInbox(t, notify.WithRetention(notify.RetentionPolicy{MaxCount: 2}))
	for _, title := range []string{"one", "two", "three"} {
		add(t, in, title)
	}

	res := New(in).Poll(context.Background())
	require.NoError(t, res.Error)
	assert.Equal(t, int64(1), res.Pruned)
	assert.Equal(t, 2, res.Unread)
}

func TestPoller_StartDeliversResults(t *testing.T) {
	in := newInbox(t)
	add(t, in, "one")

	p := New(in, WithInterval(time.Hour))
	cmd := p.Start()
	require.NotNil(t, cmd)
	defer p.Stop()

	assert.Nil(t, p.Start(), "second Start is a no-op")

	first, ok := cmd().(ResultMsg)
	require.True(t, ok)
	assert.Equal(t, 1, first.Unread)

	add(t, in, "two")
	p.Refresh()

	next, ok := p.WaitForNextResult()().(ResultMsg)
	require.True(t, ok)
	assert.Equal(t, 1, next.New)
	assert.Equal(t, 2, next.Unread)
}

func TestPoller_StopReleasesWaiters(t *testing.T) {
	in := newInbox(t)
	before := goleak.IgnoreCurrent()

	p := New(in, WithInterval(time.Hour))
	cmd := p.Start()
	require.NotNil(t, cmd)
	cmd()

	p.Stop()
	p.Stop()
	assert.Nil(t, p.WaitForNextResult()())
	goleak.VerifyNone(t, before)
}
