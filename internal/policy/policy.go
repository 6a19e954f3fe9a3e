// Package policy holds the naming and threshold conventions that tie alarms
// to the resources they guard. Everything here is a pure function of its
// inputs so both the analyzer and the executor derive identical expectations.
package policy

import (
	"strings"

	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/resource"
)

// deadLetterMarkers are the accepted spellings of a dead-letter queue name
// suffix. Matching is case-sensitive.
var deadLetterMarkers = []string{"-dlq", "-dead-letter", "_dlq"}

// Defaults carries the per-type alarm thresholds configured for a run.
type Defaults struct {
	QueueDepth    float64
	TableThrottle float64
}

// IsDeadLetter reports whether a queue name follows one of the dead-letter
// naming conventions.
func IsDeadLetter(name string) bool {
	for _, marker := range deadLetterMarkers {
		if strings.HasSuffix(name, marker) {
			return true
		}
	}
	return false
}

// ThresholdFor returns the alarm threshold for a resource. Dead-letter
// queues alert on the first visible message; everything else uses the
// configured default for its type. The dead-letter discount applies to
// queues only.
func ThresholdFor(t resource.Type, name string, defaults Defaults) float64 {
	switch t {
	case resource.TypeQueue:
		if IsDeadLetter(name) {
			return 1
		}
		return defaults.QueueDepth
	case resource.TypeTable:
		return defaults.TableThrottle
	}
	return 0
}

// AlarmNameFor derives the alarm name guarding a resource.
func AlarmNameFor(name, suffix string) string {
	return name + suffix
}

// ResourceNameFromAlarm recovers the resource name an alarm guards by
// stripping the naming-convention suffix. The second return is false when
// the alarm name does not carry the suffix at all.
func ResourceNameFromAlarm(alarmName, suffix string) (string, bool) {
	if suffix == "" || !strings.HasSuffix(alarmName, suffix) {
		return "", false
	}
	name := strings.TrimSuffix(alarmName, suffix)
	if name == "" {
		return "", false
	}
	return name, true
}

// MetricFor maps a resource type to the single CloudWatch metric its alarms
// watch.
func MetricFor(t resource.Type) string {
	switch t {
	case resource.TypeQueue:
		return "ApproximateNumberOfMessagesVisible"
	case resource.TypeTable:
		return "ThrottledRequests"
	}
	return ""
}

// NamespaceFor maps a resource type to its CloudWatch metric namespace.
func NamespaceFor(t resource.Type) string {
	switch t {
	case resource.TypeQueue:
		return "AWS/SQS"
	case resource.TypeTable:
		return "AWS/DynamoDB"
	}
	return ""
}

// DimensionFor maps a resource type to the dimension name identifying one
// resource within its namespace.
func DimensionFor(t resource.Type) string {
	switch t {
	case resource.TypeQueue:
		return "QueueName"
	case resource.TypeTable:
		return "TableName"
	}
	return ""
}
