// Package resource defines the monitorable resource kinds the reconciler
// understands and helpers for reducing inventory identifiers to bare names.
package resource

import "strings"

// Type identifies a kind of monitorable resource. Plans may carry types
// written by a newer schema than this binary understands, so Type stays a
// plain string and callers use Known to decide whether they can act on it.
type Type string

const (
	// TypeQueue is an SQS queue.
	TypeQueue Type = "queue"
	// TypeTable is a DynamoDB table.
	TypeTable Type = "table"
)

// Known reports whether the type is one this binary can create alarms for.
func (t Type) Known() bool {
	switch t {
	case TypeQueue, TypeTable:
		return true
	}
	return false
}

// Types lists every supported resource type in fetch order.
func Types() []Type {
	return []Type{TypeQueue, TypeTable}
}

// Ref identifies one monitorable resource by type and bare name.
type Ref struct {
	Type Type
	Name string
}

// NameFromLocator reduces a possibly-qualified identifier to its bare name.
// SQS inventory returns queue URLs such as
// "https://sqs.eu-west-1.amazonaws.com/123456789012/orders"; only the final
// path segment names the queue. Bare names pass through unchanged.
func NameFromLocator(locator string) string {
	locator = strings.TrimSuffix(locator, "/")
	if i := strings.LastIndex(locator, "/"); i >= 0 {
		return locator[i+1:]
	}
	return locator
}
