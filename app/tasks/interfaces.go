package tasks

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the API handlers to manage background
// archive scanning.
// Example usage:
//
//	scheduler := NewScheduler(configCache, sourceRepo, newsletterRepo, processor, httpClient)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewScanSourceTask(...))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
