package entities

// Stage identifies one step of the load pipeline.
type Stage int

const (
	// StageValidate checks the LoadRequest before anything is fetched.
	StageValidate Stage = iota
	// StageFetch retrieves the binary from the source.
	StageFetch
	// StageCompile compiles the binary for the runtime.
	StageCompile
	// StageInstantiate binds the compiled module to the bridge's imports.
	StageInstantiate
	// StageRun calls the entry point.
	StageRun
)

var stageNames = [...]string{
	StageValidate:    "validate",
	StageFetch:       "fetch",
	StageCompile:     "compile",
	StageInstantiate: "instantiate",
	StageRun:         "run",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// Phase distinguishes the start of a stage from its end.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseEnd
)

func (p Phase) String() string {
	if p == PhaseStart {
		return "start"
	}
	return "end"
}

// StageEvent is reported to a loader observer around every stage.
// Err is only set on a PhaseEnd event of a failed stage.
type StageEvent struct {
	Err   error
	Name  string
	Path  string
	Stage Stage
	Phase Phase
}
