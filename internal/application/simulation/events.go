package simulation

import (
	"fmt"

	"github.com/andrescamacho/fascia-warehouse/internal/domain/worker"
)

// Event is one already-parsed warehouse floor event. The set of event kinds
// is closed; only types in this package implement it.
type Event interface {
	fmt.Stringer
	Kind() string
	isEvent()
}

// CheckerAction is an action a sequencer or loader takes on its request
type CheckerAction string

const (
	ActionCheck   CheckerAction = "check"
	ActionRescan  CheckerAction = "rescan"
	ActionReject  CheckerAction = "reject"
	ActionApprove CheckerAction = "approve"
)

// OrderSubmitted is a new customer order
type OrderSubmitted struct {
	Colour string
	Model  string
}

// WorkerReady announces that a worker is ready for work
type WorkerReady struct {
	Role     worker.Role
	WorkerID string
}

// PickerPicked is a picker scanning one fascia
type PickerPicked struct {
	WorkerID string
	Item     string
}

// PickerAdvanced is a picker taking its cart to marshaling
type PickerAdvanced struct {
	WorkerID string
}

// CheckerActed is a sequencer or loader acting on its request
type CheckerActed struct {
	Role     worker.Role
	WorkerID string
	Action   CheckerAction
}

// ReplenisherWent is a replenisher restocking its location
type ReplenisherWent struct {
	WorkerID string
}

func (OrderSubmitted) isEvent()  {}
func (WorkerReady) isEvent()     {}
func (PickerPicked) isEvent()    {}
func (PickerAdvanced) isEvent()  {}
func (CheckerActed) isEvent()    {}
func (ReplenisherWent) isEvent() {}

func (OrderSubmitted) Kind() string  { return "order_submitted" }
func (WorkerReady) Kind() string     { return "worker_ready" }
func (PickerPicked) Kind() string    { return "picker_picked" }
func (PickerAdvanced) Kind() string  { return "picker_advanced" }
func (CheckerActed) Kind() string    { return "checker_acted" }
func (ReplenisherWent) Kind() string { return "replenisher_went" }

// The String methods render each event in command file syntax.

func (e OrderSubmitted) String() string {
	return fmt.Sprintf("Order %s %s", e.Model, e.Colour)
}

func (e WorkerReady) String() string {
	return fmt.Sprintf("%s %s ready", e.Role, e.WorkerID)
}

func (e PickerPicked) String() string {
	return fmt.Sprintf("Picker %s picks %s", e.WorkerID, e.Item)
}

func (e PickerAdvanced) String() string {
	return fmt.Sprintf("Picker %s to Marshaling", e.WorkerID)
}

func (e CheckerActed) String() string {
	return fmt.Sprintf("%s %s %s", e.Role, e.WorkerID, CheckerVerb(e.Role, e.Action))
}

func (e ReplenisherWent) String() string {
	return fmt.Sprintf("Replenisher %s replenishes", e.WorkerID)
}

// CheckerVerb returns the command file verb for a checker action
func CheckerVerb(role worker.Role, action CheckerAction) string {
	switch action {
	case ActionCheck:
		if role == worker.RoleLoader {
			return "loads"
		}
		return "sequences"
	case ActionRescan:
		return "rescans"
	case ActionReject:
		return "rejects"
	case ActionApprove:
		return "approves"
	}
	return string(action)
}
