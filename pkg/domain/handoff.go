package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Names under which the handoff signals are exposed to the planner.
const (
	HandoffToHotel             = "ToHotelBookingAssistant"
	HandoffToExcursionTransfer = "ToBookExcursion"
	HandoffCompleteOrEscalate  = "CompleteOrEscalate"
)

// HandoffSignal moves control to another agent. Each variant carries exactly
// the slots its destination expects.
type HandoffSignal interface {
	// Target is the agent that takes over.
	Target() AgentID
	// Slots are the values seeded into the destination agent.
	Slots() map[string]string
	isHandoff()
}

// ToHotel transfers the work to the hotel specialist.
type ToHotel struct {
	Location     string `json:"location" mapstructure:"location" jsonschema:"description=The location where the user wants to book a hotel."`
	CheckinDate  string `json:"checkin_date" mapstructure:"checkin_date" jsonschema:"description=The check-in date for the hotel (YYYY-MM-DD)."`
	CheckoutDate string `json:"checkout_date" mapstructure:"checkout_date" jsonschema:"description=The check-out date for the hotel (YYYY-MM-DD)."`
	Request      string `json:"request" mapstructure:"request" jsonschema:"description=Any additional information or requests from the user regarding the hotel booking."`
}

func (ToHotel) Target() AgentID { return AgentHotel }
func (h ToHotel) Slots() map[string]string {
	return compact(map[string]string{
		"location":      h.Location,
		"checkin_date":  h.CheckinDate,
		"checkout_date": h.CheckoutDate,
		"request":       h.Request,
	})
}
func (ToHotel) isHandoff() {}

// ToExcursionTransfer transfers the work to the excursion and transfer specialist.
type ToExcursionTransfer struct {
	Location string `json:"location" mapstructure:"location" jsonschema:"description=The location where the user wants to book a recommended trip."`
	Request  string `json:"request" mapstructure:"request" jsonschema:"description=Any additional information or requests from the user regarding the trip recommendation."`
}

func (ToExcursionTransfer) Target() AgentID { return AgentExcursionTransfer }
func (e ToExcursionTransfer) Slots() map[string]string {
	return compact(map[string]string{"location": e.Location, "request": e.Request})
}
func (ToExcursionTransfer) isHandoff() {}

// CompleteOrEscalate returns control to the Supervisor.
type CompleteOrEscalate struct {
	Cancel bool   `json:"cancel" mapstructure:"cancel" jsonschema:"description=True when the current task is finished or cancelled."`
	Reason string `json:"reason" mapstructure:"reason" jsonschema:"description=Why control is handed back to the main assistant."`
}

func (CompleteOrEscalate) Target() AgentID          { return AgentSupervisor }
func (CompleteOrEscalate) Slots() map[string]string { return nil }
func (CompleteOrEscalate) isHandoff()               {}

// HandoffName returns the planner-facing name of a signal.
func HandoffName(sig HandoffSignal) string {
	switch sig.(type) {
	case ToHotel, *ToHotel:
		return HandoffToHotel
	case ToExcursionTransfer, *ToExcursionTransfer:
		return HandoffToExcursionTransfer
	default:
		return HandoffCompleteOrEscalate
	}
}

// IsHandoff reports whether a tool name is one of the handoff signals.
func IsHandoff(name string) bool {
	switch name {
	case HandoffToHotel, HandoffToExcursionTransfer, HandoffCompleteOrEscalate:
		return true
	}
	return false
}

// DecodeHandoff builds the typed signal for a structured planner output.
func DecodeHandoff(name string, args map[string]any) (HandoffSignal, error) {
	var sig HandoffSignal
	var err error
	switch name {
	case HandoffToHotel:
		var v ToHotel
		err = decodeArgs(args, &v)
		sig = v
	case HandoffToExcursionTransfer:
		var v ToExcursionTransfer
		err = decodeArgs(args, &v)
		sig = v
	case HandoffCompleteOrEscalate:
		var v CompleteOrEscalate
		err = decodeArgs(args, &v)
		sig = v
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownHandoff, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return sig, nil
}

func decodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(args)
}

func compact(m map[string]string) map[string]string {
	for k, v := range m {
		if v == "" {
			delete(m, k)
		}
	}
	return m
}
