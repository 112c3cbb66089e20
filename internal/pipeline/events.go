package pipeline

// ProgressEvent is one progress update emitted while a run executes. Content
// carries a state-specific payload (source summaries, the finished document)
// for callers that stream progress to a client.
type ProgressEvent struct {
	RunID   string `json:"run_id,omitempty"`
	State   string `json:"state"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback receives progress events. Callbacks run on the
// orchestrator goroutine; slow consumers should hand off to their own.
type ProgressCallback func(event ProgressEvent)

func emit(cb ProgressCallback, runID string, state State, message string, content any) {
	if cb == nil {
		return
	}
	cb(ProgressEvent{
		RunID:   runID,
		State:   string(state),
		Message: message,
		Content: content,
	})
}
