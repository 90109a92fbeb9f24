package config

// WorkerKeyStruct names the Redis lists consumed by background workers.
type WorkerKeyStruct struct {
	EnrollmentEventsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	EnrollmentEventsQueue: "enrollment_events_queue",
}
