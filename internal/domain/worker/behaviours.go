package worker

import "context"

type handOffFunc func(ctx context.Context, w *Worker) error

// behaviour is the set of actions a role supports. A nil action is not
// available to that role.
type behaviour struct {
	onAssigned func(w *Worker)
	pick       func(ctx context.Context, w *Worker, item string) (PickResult, error)
	advance    handOffFunc
	check      func(ctx context.Context, w *Worker) (CheckResult, error)
	rescan     func(ctx context.Context, w *Worker) error
	reject     handOffFunc
	approve    handOffFunc
	replenish  func(ctx context.Context, w *Worker) (ReplenishResult, error)
}

var behaviours = map[Role]behaviour{
	RolePicker: {
		onAssigned: pickerAssigned,
		pick:       pickerPick,
		advance:    pickerAdvance,
	},
	RoleSequencer: checkerBehaviour(sequencerApprove),
	RoleLoader:    checkerBehaviour(loaderApprove),
	RoleReplenisher: {
		replenish: replenisherReplenish,
	},
}

// checkerBehaviour composes the shared checking actions with a role-specific approve step
func checkerBehaviour(approve handOffFunc) behaviour {
	return behaviour{
		onAssigned: checkerAssigned,
		check:      checkerCheck,
		rescan:     checkerRescan,
		reject:     checkerReject,
		approve:    approve,
	}
}
