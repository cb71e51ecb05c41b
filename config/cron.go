package config

// CronJob pairs a cron schedule with its job function.
type CronJob struct {
	Schedule string
	Job      func(...string)
}

// CronJobs maps job names to statically configured jobs. Jobs that need
// runtime dependencies (the stock overlay, the notifier) are registered
// through cron.Register from main instead.
var CronJobs = map[string]CronJob{
	// Add static jobs here
}
