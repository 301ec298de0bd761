package ports

// SimMetrics counts coordinator operations for the ops KPI endpoint.
type SimMetrics interface {
	RecordTick(emittedEvents int)
	RecordBuildSuccess()
	RecordBuildRejected(reason string)
	RecordFailure()
}
