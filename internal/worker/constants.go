package worker

const (
	LogMsgWorkerJobFailed = "Worker job failed"

	ErrMsgPoolStopped = "worker pool stopped"
	ErrMsgJobPanicked = "job panicked"
)

// Sizes shared by the pool tests.
const (
	TestWorkerCount      = 2
	TestQueueSize        = 10
	TestExpectedJobCount = 2
)
