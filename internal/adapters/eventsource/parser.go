// Package eventsource turns command file lines into simulation events.
package eventsource

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/andrescamacho/fascia-warehouse/internal/application/simulation"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/worker"
)

// ErrMalformedCommand reports a line that matches no command form
type ErrMalformedCommand struct {
	Line string
}

func (e *ErrMalformedCommand) Error() string {
	return fmt.Sprintf("Command '%s' could not be recognized. Please reformat this command.", e.Line)
}

var wordPattern = regexp.MustCompile(`^\w+$`)

// tokens are the words of a command after it is split on single spaces
type tokens struct {
	Head    string `validate:"required,word"`
	Subject string `validate:"required,word"`
	Verb    string `validate:"required,word"`
	Object  string `validate:"omitempty,word"`
}

var tokenValidator = newTokenValidator()

func newTokenValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("word", func(fl validator.FieldLevel) bool {
		return wordPattern.MatchString(fl.Field().String())
	})
	return v
}

var checkerVerbs = map[worker.Role]map[string]simulation.CheckerAction{
	worker.RoleSequencer: {
		"sequences": simulation.ActionCheck,
		"rescans":   simulation.ActionRescan,
		"rejects":   simulation.ActionReject,
		"approves":  simulation.ActionApprove,
	},
	worker.RoleLoader: {
		"loads":    simulation.ActionCheck,
		"rescans":  simulation.ActionRescan,
		"rejects":  simulation.ActionReject,
		"approves": simulation.ActionApprove,
	},
}

// Parse converts one command line into an event.
//
//	Order <model> <colour>
//	<Role> <id> ready
//	Picker <id> picks <item>
//	Picker <id> to Marshaling
//	Sequencer <id> sequences|rescans|rejects|approves
//	Loader <id> loads|rescans|rejects|approves
//	Replenisher <id> replenishes
func Parse(line string) (simulation.Event, error) {
	malformed := &ErrMalformedCommand{Line: line}

	words := strings.Split(line, " ")
	if len(words) < 3 || len(words) > 4 {
		return nil, malformed
	}

	t := tokens{Head: words[0], Subject: words[1], Verb: words[2]}
	if len(words) == 4 {
		t.Object = words[3]
		if t.Object == "" {
			return nil, malformed
		}
	}
	if err := tokenValidator.Struct(t); err != nil {
		return nil, malformed
	}

	if t.Head == "Order" {
		if t.Object != "" {
			return nil, malformed
		}
		return simulation.OrderSubmitted{Model: t.Subject, Colour: t.Verb}, nil
	}

	role, err := worker.ParseRole(t.Head)
	if err != nil {
		return nil, malformed
	}

	if t.Verb == "ready" && t.Object == "" {
		return simulation.WorkerReady{Role: role, WorkerID: t.Subject}, nil
	}

	switch role {
	case worker.RolePicker:
		switch {
		case t.Verb == "picks" && t.Object != "":
			return simulation.PickerPicked{WorkerID: t.Subject, Item: t.Object}, nil
		case t.Verb == "to" && t.Object == "Marshaling":
			return simulation.PickerAdvanced{WorkerID: t.Subject}, nil
		}

	case worker.RoleSequencer, worker.RoleLoader:
		if action, ok := checkerVerbs[role][t.Verb]; ok && t.Object == "" {
			return simulation.CheckerActed{Role: role, WorkerID: t.Subject, Action: action}, nil
		}

	case worker.RoleReplenisher:
		if t.Verb == "replenishes" && t.Object == "" {
			return simulation.ReplenisherWent{WorkerID: t.Subject}, nil
		}
	}

	return nil, malformed
}
