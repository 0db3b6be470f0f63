package mqtt

import "fmt"

// Topic constants for the Daybreak task board
const (
	// Theme engine command topics (input)
	TopicThemeSet    = "taskboard/theme/set"
	TopicThemeToggle = "taskboard/theme/toggle"

	// UI event topics (input): visibility, focus, resize
	TopicUIEvents = "taskboard/ui/+"

	// Theme engine state topics (output)
	TopicThemeState     = "taskboard/theme/state"
	TopicThemeAnimation = "taskboard/theme/animation"

	// Task store topics
	TopicTaskRequests = "taskboard/tasks/request/+"
	TopicTasksChanged = "taskboard/tasks/changed"
)

// UIEventTopic constructs a UI event topic for a specific event kind
// Pattern: taskboard/ui/{kind}
func UIEventTopic(kind string) string {
	return fmt.Sprintf("taskboard/ui/%s", kind)
}

// TaskRequestTopic constructs a task operation request topic
// Pattern: taskboard/tasks/request/{operation}
func TaskRequestTopic(operation string) string {
	return fmt.Sprintf("taskboard/tasks/request/%s", operation)
}

// TaskResponseTopic constructs the response topic for a correlated request
// Pattern: taskboard/tasks/response/{request_id}
func TaskResponseTopic(requestID string) string {
	return fmt.Sprintf("taskboard/tasks/response/%s", requestID)
}
