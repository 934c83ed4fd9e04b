package domain

// Phase names the stage of a long-running operation
type Phase string

const (
	PhaseResolve  Phase = "resolve"
	PhaseDownload Phase = "download"
	PhaseExtract  Phase = "extract"
	PhaseDone     Phase = "done"
)

// Progress is one notification from a running install or update.
// Percent is the overall completion in [0,100] and never decreases within
// one operation.
type Progress struct {
	Phase   Phase
	Item    string // Record or archive currently being processed
	Index   int    // 1-based position within a batch
	Total   int    // Batch size, 1 for a single install
	Percent float64
}

// ProgressFunc receives progress notifications. It is called on the worker
// goroutine and must not block.
type ProgressFunc func(Progress)
