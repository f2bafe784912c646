// Package slots declares the slot protocol (get/set/responds-to) that generated
// code may call. None of it is implemented yet: every operation reports
// Unimplemented and produces no value.
package slots

import (
	"fmt"

	"github.com/funvibe/dynrt/internal/config"
)

// State of a slot operation.
type State int

const (
	Unimplemented State = iota
)

func (s State) String() string {
	if s == Unimplemented {
		return "unimplemented"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Result names the operation that was requested.
type Result struct {
	Op    string
	State State
}

func (r Result) String() string {
	return fmt.Sprintf("<%s %s>", r.Op, r.State)
}

func unimplemented(op string) Result {
	return Result{Op: op, State: Unimplemented}
}

func Import(context any, name string) Result {
	return unimplemented(config.ImportOpName)
}

func Access(value any) Result {
	return unimplemented(config.AccessOpName)
}

func GetSlot(target any, name string) Result {
	return unimplemented(config.GetSlotOpName)
}

func SetSlot(target any, name string) Result {
	return unimplemented(config.SetSlotOpName)
}

func RespondsTo(target any, name string) Result {
	return unimplemented(config.RespondsToOpName)
}

func Respond(target any, name string, args []any) Result {
	return unimplemented(config.RespondOpName)
}
