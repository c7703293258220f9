package threadpool

// State is the lifecycle state of a pool.
//
//	Online → SoftShutdown → Offline    [Destroy(true)]
//	Online → HardShutdown → Offline    [Destroy(false)]
//	SoftShutdown → HardShutdown        [Destroy(false) during a drain]
//
// Transitions never move backward.
type State int32

const (
	Online State = iota
	SoftShutdown
	HardShutdown
	Offline
)

func (s State) String() string {
	switch s {
	case Online:
		return "online"
	case SoftShutdown:
		return "soft_shutdown"
	case HardShutdown:
		return "hard_shutdown"
	case Offline:
		return "offline"
	default:
		return "unknown"
	}
}

// WorkerState reports what a single worker is doing.
type WorkerState int32

const (
	WorkerWaiting WorkerState = iota
	WorkerRunning
)

func (s WorkerState) String() string {
	if s == WorkerRunning {
		return "running"
	}
	return "waiting"
}
