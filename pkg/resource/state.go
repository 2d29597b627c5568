package resource

// State is the lifecycle state of a resource slot.
//
//	Initial -> Setup -> Pending -> Valid | Failed
//
// Valid and Failed are stable until the resource is destroyed.
type State uint8

const (
	Initial State = iota // unused slot
	Setup                // assigned, factory not run yet
	Pending              // waiting for data or dependencies
	Valid                // usable
	Failed               // creation failed, terminal

	// InvalidState is reported for Ids that no longer (or never) exist.
	InvalidState
)

// NumStates is the number of real slot states (InvalidState excluded).
const NumStates = int(InvalidState)

var stateNames = [...]string{
	Initial:      "Initial",
	Setup:        "Setup",
	Pending:      "Pending",
	Valid:        "Valid",
	Failed:       "Failed",
	InvalidState: "InvalidState",
}

// String implements fmt.Stringer.
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "State(?)"
}

// Info describes a single resource.
type Info struct {
	Id    Id
	State State
}

// PoolInfo is a snapshot of a pool. Building it walks every slot, so it is a
// diagnostic and not meant for per-frame use.
type PoolInfo struct {
	ResourceType    Type
	NumSlots        int
	NumUsedSlots    int
	NumFreeSlots    int
	NumSlotsByState [NumStates]int
}
