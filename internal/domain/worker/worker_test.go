package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/andrescamacho/fascia-warehouse/internal/domain/order"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/request"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDispatcher records routing calls and serves a fixed queue of assignments
type fakeDispatcher struct {
	queue       []Assignment
	idle        []*Worker
	picking     []*request.WorkRequest
	sequencing  []*request.WorkRequest
	loading     []*request.WorkRequest
	completed   []*request.WorkRequest
	completeErr error
}

func (d *fakeDispatcher) Claim(ctx context.Context, w *Worker) (Assignment, bool) {
	if len(d.queue) == 0 {
		d.idle = append(d.idle, w)
		return Assignment{}, false
	}
	next := d.queue[0]
	d.queue = d.queue[1:]
	return next, true
}

func (d *fakeDispatcher) RouteToPicking(ctx context.Context, req *request.WorkRequest) {
	d.picking = append(d.picking, req)
}

func (d *fakeDispatcher) RouteToSequencing(ctx context.Context, req *request.WorkRequest) {
	d.sequencing = append(d.sequencing, req)
}

func (d *fakeDispatcher) RouteToLoading(ctx context.Context, req *request.WorkRequest) {
	d.loading = append(d.loading, req)
}

func (d *fakeDispatcher) CompleteRequest(ctx context.Context, req *request.WorkRequest) error {
	d.completed = append(d.completed, req)
	return d.completeErr
}

type fakeStock struct {
	decremented []string
	replenished []string
	needed      bool
}

func (s *fakeStock) Decrement(ctx context.Context, item string) (int, error) {
	s.decremented = append(s.decremented, item)
	return 29, nil
}

func (s *fakeStock) Replenish(slot string) (bool, error) {
	s.replenished = append(s.replenished, slot)
	return s.needed, nil
}

var (
	loadSequence = []string{"2", "4", "6", "2", "1", "3", "5", "1"}
	pickSequence = []string{"1", "1", "2", "2", "3", "4", "5", "6"}
)

func newRequest(t *testing.T, id int) *request.WorkRequest {
	t.Helper()
	var orders []*order.Order
	for i := 0; i < 4; i++ {
		o, err := order.NewOrder(id*4+i, "White", "S")
		require.NoError(t, err)
		orders = append(orders, o)
	}
	req, err := request.NewWorkRequest(id, orders, loadSequence, pickSequence)
	require.NoError(t, err)
	return req
}

func newAssignedWorker(t *testing.T, role Role, assignment Assignment) (*Worker, *fakeDispatcher, *fakeStock) {
	t.Helper()
	dispatcher := &fakeDispatcher{queue: []Assignment{assignment}}
	stock := &fakeStock{}
	w, err := NewWorker("Alice", role, dispatcher, stock)
	require.NoError(t, err)

	_, ok, err := w.RequestWork(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	return w, dispatcher, stock
}

func TestWorker_RequestWorkRegistersIdleWhenNothingAvailable(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	w, err := NewWorker("Bob", RolePicker, dispatcher, &fakeStock{})
	require.NoError(t, err)

	_, ok, err := w.RequestWork(context.Background())

	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, w.IsIdle())
	assert.Equal(t, []*Worker{w}, dispatcher.idle)
}

func TestWorker_RequestWorkWhileAssigned(t *testing.T) {
	w, _, _ := newAssignedWorker(t, RolePicker, Assignment{Request: newRequest(t, 1)})

	_, _, err := w.RequestWork(context.Background())

	var assigned *shared.AlreadyAssignedError
	require.True(t, errors.As(err, &assigned))
	assert.Equal(t, 1, assigned.RequestID)
}

func TestPicker_PicksInSequenceUntilDone(t *testing.T) {
	// Arrange
	req := newRequest(t, 1)
	w, dispatcher, stock := newAssignedWorker(t, RolePicker, Assignment{Request: req})
	ctx := context.Background()

	// Act
	var last PickResult
	for _, item := range pickSequence {
		var err error
		last, err = w.Pick(ctx, item)
		require.NoError(t, err)
	}

	// Assert
	assert.True(t, last.DonePicking)
	assert.Equal(t, pickSequence, stock.decremented)
	assert.Equal(t, pickSequence, req.State())

	_, err := w.Pick(ctx, "1")
	var done *ErrAlreadyDonePicking
	assert.True(t, errors.As(err, &done))

	requestID, err := w.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, requestID)
	assert.Equal(t, []*request.WorkRequest{req}, dispatcher.sequencing)
	assert.True(t, w.IsIdle())
	assert.Zero(t, w.View().Cursor)
}

func TestPicker_RejectsOutOfSequenceDuplicate(t *testing.T) {
	w, _, stock := newAssignedWorker(t, RolePicker, Assignment{Request: newRequest(t, 1)})
	ctx := context.Background()

	_, err := w.Pick(ctx, "1")
	require.NoError(t, err)

	// "3" belongs later in the sequence; cursor is on the second "1"
	_, err = w.Pick(ctx, "3")

	var mismatch *ErrPickMismatch
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "1", mismatch.Expected)
	assert.Equal(t, 1, w.View().Cursor)
	assert.Len(t, stock.decremented, 1)
}

func TestPicker_AdvanceBeforeDone(t *testing.T) {
	w, dispatcher, _ := newAssignedWorker(t, RolePicker, Assignment{Request: newRequest(t, 1)})

	_, err := w.Advance(context.Background())

	var notDone *ErrNotDonePicking
	assert.True(t, errors.As(err, &notDone))
	assert.Empty(t, dispatcher.sequencing)
	assert.False(t, w.IsIdle())
}

func TestPicker_ActionsWithoutTask(t *testing.T) {
	w, err := NewWorker("Bob", RolePicker, &fakeDispatcher{}, &fakeStock{})
	require.NoError(t, err)

	_, err = w.Pick(context.Background(), "1")
	var noTask *shared.NoTaskError
	assert.True(t, errors.As(err, &noTask))

	_, err = w.Advance(context.Background())
	assert.True(t, errors.As(err, &noTask))
}

func TestPicker_StartsOverOnRepick(t *testing.T) {
	req := newRequest(t, 1)
	req.AppendState("leftover")

	w, _, _ := newAssignedWorker(t, RolePicker, Assignment{Request: req})

	assert.Empty(t, req.State())
	assert.False(t, w.View().DonePicking)
}

func givenPicked(req *request.WorkRequest, items []string) {
	for _, item := range items {
		req.AppendState(item)
	}
}

func TestChecker_AllPassThenSequencerApproves(t *testing.T) {
	// Arrange
	req := newRequest(t, 1)
	givenPicked(req, pickSequence)
	w, dispatcher, _ := newAssignedWorker(t, RoleSequencer, Assignment{Request: req})
	ctx := context.Background()

	// Act
	for i := 0; i < len(loadSequence); i++ {
		result, err := w.Check(ctx)
		require.NoError(t, err)
		assert.True(t, result.Passed)
	}
	_, err := w.Check(ctx)
	var limit *ErrCheckLimitReached
	assert.True(t, errors.As(err, &limit))

	_, err = w.Approve(ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, loadSequence, req.State())
	assert.Equal(t, []*request.WorkRequest{req}, dispatcher.loading)
	assert.True(t, w.IsIdle())
}

func TestChecker_FailureBlocksUntilRescan(t *testing.T) {
	req := newRequest(t, 1)
	givenPicked(req, []string{"1", "1", "3", "5"})
	w, _, _ := newAssignedWorker(t, RoleLoader, Assignment{Request: req})
	ctx := context.Background()

	result, err := w.Check(ctx)
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Equal(t, "2", result.Item)

	_, err = w.Check(ctx)
	var blocked *ErrCheckBlocked
	require.True(t, errors.As(err, &blocked))
	assert.True(t, w.View().Blocked)

	require.NoError(t, w.Rescan(ctx))
	view := w.View()
	assert.Zero(t, view.Cursor)
	assert.False(t, view.Blocked)
	assert.Equal(t, 1, view.RequestID)
}

func TestChecker_RejectSendsBackToPicking(t *testing.T) {
	req := newRequest(t, 1)
	w, dispatcher, _ := newAssignedWorker(t, RoleSequencer, Assignment{Request: req})

	_, err := w.Check(context.Background())
	require.NoError(t, err)
	_, err = w.Reject(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []*request.WorkRequest{req}, dispatcher.picking)
	assert.True(t, w.IsIdle())
	assert.False(t, w.View().Blocked)
}

func TestLoader_ApproveCompletesRequest(t *testing.T) {
	req := newRequest(t, 1)
	givenPicked(req, loadSequence)
	w, dispatcher, _ := newAssignedWorker(t, RoleLoader, Assignment{Request: req})
	dispatcher.completeErr = errors.New("out of order")

	_, err := w.Approve(context.Background())

	assert.EqualError(t, err, "out of order")
	assert.Equal(t, []*request.WorkRequest{req}, dispatcher.completed)
	assert.Equal(t, loadSequence, req.State())
	assert.True(t, w.IsIdle())
}

func TestChecker_ApproveWithoutTask(t *testing.T) {
	w, err := NewWorker("Carol", RoleLoader, &fakeDispatcher{}, &fakeStock{})
	require.NoError(t, err)

	_, err = w.Approve(context.Background())

	var noTask *shared.NoTaskError
	assert.True(t, errors.As(err, &noTask))
}

func TestReplenisher_ReleasesWhetherOrNotNeeded(t *testing.T) {
	w, _, stock := newAssignedWorker(t, RoleReplenisher, Assignment{Location: "A,0,0,1"})
	assert.Equal(t, "A,0,0,1", w.View().Location)

	result, err := w.Replenish(context.Background())

	require.NoError(t, err)
	assert.False(t, result.Replenished)
	assert.Equal(t, []string{"A,0,0,1"}, stock.replenished)
	assert.True(t, w.IsIdle())
	assert.Empty(t, w.View().Location)
}

func TestReplenisher_WithoutLocation(t *testing.T) {
	w, err := NewWorker("Dan", RoleReplenisher, &fakeDispatcher{}, &fakeStock{})
	require.NoError(t, err)

	_, err = w.Replenish(context.Background())

	var noTask *shared.NoTaskError
	assert.True(t, errors.As(err, &noTask))
}

func TestWorker_UnsupportedActionsForRole(t *testing.T) {
	w, err := NewWorker("Eve", RoleReplenisher, &fakeDispatcher{}, &fakeStock{})
	require.NoError(t, err)

	_, err = w.Pick(context.Background(), "1")
	var unsupported *shared.UnsupportedActionError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "pick", unsupported.Action)

	_, err = w.Check(context.Background())
	assert.True(t, errors.As(err, &unsupported))
}

func TestWorker_AssignRejectsWrongKindOfWork(t *testing.T) {
	w, err := NewWorker("Fay", RolePicker, &fakeDispatcher{}, &fakeStock{})
	require.NoError(t, err)

	err = w.Assign(Assignment{Location: "A,0,0,0"})

	var mismatch *ErrAssignmentMismatch
	assert.True(t, errors.As(err, &mismatch))
	assert.True(t, w.IsIdle())
}
