package style

// StatusColor returns the badge color for a workflow or task status.
// Unknown statuses are gray.
func StatusColor(status string) string {
	switch status {
	case "RUNNING":
		return Blue
	case "COMPLETED":
		return Green
	case "FAILED":
		return Red
	case "CANCELED":
		return Gray
	case "PENDING":
		return Yellow
	default:
		return Gray
	}
}

// LevelColor returns the badge color for a log level.
func LevelColor(level string) string {
	switch level {
	case "DEBUG":
		return Gray
	case "INFO":
		return Blue
	case "WARNING":
		return Yellow
	case "ERROR":
		return Red
	default:
		return Gray
	}
}
