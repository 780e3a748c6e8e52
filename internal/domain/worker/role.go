package worker

import "fmt"

// Role is the job a worker performs in the pipeline
type Role string

const (
	RolePicker      Role = "Picker"
	RoleSequencer   Role = "Sequencer"
	RoleLoader      Role = "Loader"
	RoleReplenisher Role = "Replenisher"
)

// Roles returns every role in pipeline order
func Roles() []Role {
	return []Role{RolePicker, RoleSequencer, RoleLoader, RoleReplenisher}
}

// ParseRole converts the role token used in command files
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", fmt.Errorf("unknown worker role: %q", s)
	}
	return role, nil
}

func (r Role) IsValid() bool {
	switch r {
	case RolePicker, RoleSequencer, RoleLoader, RoleReplenisher:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Status is the position of a worker in its Idle -> Assigned -> Idle cycle
type Status string

const (
	StatusIdle     Status = "IDLE"
	StatusAssigned Status = "ASSIGNED"
)
