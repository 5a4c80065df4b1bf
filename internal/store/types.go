package store

// Run is one recorded execution.
type Run struct {
	ID  string
	Seq int64

	ProgramName string
	ProgramHash string
	Program     []byte

	// Input is every character the program consumed, in order.
	Input  string
	Output []byte

	Steps         int
	ProgramCursor int
	DataCursor    int
	LoopDepth     int
	Conditions    map[string]int

	// ErrorKind is the condition kind of a fatal error, if any.
	ErrorKind string
	Error     string

	Machine Machine
}

// Machine holds the settings a run executed under.
type Machine struct {
	MemorySize     int
	CursorRollover bool
	ValueRollover  bool
	Strict         bool
	MaxSteps       int
}
