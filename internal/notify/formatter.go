package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/executor"
)

// FormatText converts a run result to a human-readable text message.
func FormatText(result *executor.Result) string {
	var msg strings.Builder

	msg.WriteString("Alarm reconciliation run: ")
	msg.WriteString(result.Region)
	fmt.Fprintf(&msg, "\nCreated: %d\nDeleted: %d\nFailed: %d\nSkipped: %d\n",
		result.Created, result.Deleted, result.Failed, result.Skipped)

	if result.Failed > 0 {
		msg.WriteString("\nFailed actions:\n")
		for _, o := range result.Outcomes {
			if o.Succeeded {
				continue
			}
			fmt.Fprintf(&msg, "- %s %s: %s\n", o.Action, o.AlarmName, o.Error)
		}
	}

	fmt.Fprintf(&msg, "\nTimestamp: %s", result.StartedAt.Format(time.RFC3339))

	return msg.String()
}
