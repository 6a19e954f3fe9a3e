package plan

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/policy"
	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/resource"
)

const (
	sectionCreate  = "---CREATE---"
	sectionDelete  = "---DELETE---"
	sectionSummary = "---SUMMARY---"
)

// Encode writes the plan in its line-oriented wire format:
//
//	REGION=<region>
//	ALARM_SUFFIX=<suffix>
//	---CREATE---
//	<resourceType>|<resourceName>|<alarmName>|<threshold>|<metricName>
//	---DELETE---
//	<alarmName>
//	---SUMMARY---
//	CREATE_COUNT=<n>
//	DELETE_COUNT=<m>
func Encode(w io.Writer, p *Plan) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "REGION=%s\n", p.Region)
	fmt.Fprintf(bw, "ALARM_SUFFIX=%s\n", p.AlarmSuffix)

	fmt.Fprintln(bw, sectionCreate)
	for _, c := range p.Creates {
		fmt.Fprintf(bw, "%s|%s|%s|%s|%s\n",
			c.ResourceType,
			c.ResourceName,
			c.AlarmName,
			strconv.FormatFloat(c.Threshold, 'f', -1, 64),
			c.MetricName)
	}

	fmt.Fprintln(bw, sectionDelete)
	for _, d := range p.Deletes {
		fmt.Fprintln(bw, d.AlarmName)
	}

	fmt.Fprintln(bw, sectionSummary)
	fmt.Fprintf(bw, "CREATE_COUNT=%d\n", len(p.Creates))
	fmt.Fprintf(bw, "DELETE_COUNT=%d\n", len(p.Deletes))

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("cannot write plan: %w", err)
	}
	return nil
}

// Decode parses a plan from its wire format. Malformed create lines are
// skipped with a warning rather than failing the whole plan; a summary count
// that disagrees with the parsed sections is also only a warning. A missing
// trailing newline on the final line is tolerated.
func Decode(r io.Reader, logger *slog.Logger) (*Plan, error) {
	p := &Plan{}

	var (
		section     string
		createCount = -1
		deleteCount = -1
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		switch line {
		case sectionCreate, sectionDelete, sectionSummary:
			section = line
			continue
		}

		switch section {
		case sectionCreate:
			c, err := parseCreateLine(line)
			if err != nil {
				logger.Warn("skipping malformed create line",
					slog.String("line", line),
					slog.String("error", err.Error()))
				continue
			}
			p.Creates = append(p.Creates, c)

		case sectionDelete:
			p.Deletes = append(p.Deletes, DeleteAction{AlarmName: line})

		case sectionSummary:
			if v, ok := strings.CutPrefix(line, "CREATE_COUNT="); ok {
				createCount = parseCount(v, line, createCount, logger)
			} else if v, ok := strings.CutPrefix(line, "DELETE_COUNT="); ok {
				deleteCount = parseCount(v, line, deleteCount, logger)
			}

		default:
			// Header lines before the first section marker.
			if v, ok := strings.CutPrefix(line, "REGION="); ok {
				p.Region = v
			} else if v, ok := strings.CutPrefix(line, "ALARM_SUFFIX="); ok {
				p.AlarmSuffix = v
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read plan: %w", err)
	}

	if createCount >= 0 && createCount != len(p.Creates) {
		logger.Warn("create count mismatch",
			slog.Int("declared", createCount),
			slog.Int("parsed", len(p.Creates)))
	}
	if deleteCount >= 0 && deleteCount != len(p.Deletes) {
		logger.Warn("delete count mismatch",
			slog.Int("declared", deleteCount),
			slog.Int("parsed", len(p.Deletes)))
	}

	return p, nil
}

// parseCount parses a summary count value, keeping the previous value (and
// so the "no declared count" state) when the line is malformed.
func parseCount(v, line string, prev int, logger *slog.Logger) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn("skipping malformed summary line",
			slog.String("line", line),
			slog.String("error", err.Error()))
		return prev
	}
	return n
}

// parseCreateLine accepts the 5-field form and the legacy 3-field form
// <resourceName>|<alarmName>|<threshold>, which predates multi-type support
// and implies a queue resource with the default queue metric.
func parseCreateLine(line string) (CreateAction, error) {
	fields := strings.Split(line, "|")

	switch len(fields) {
	case 5:
		threshold, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return CreateAction{}, fmt.Errorf("bad threshold %q: %w", fields[3], err)
		}
		return CreateAction{
			ResourceType: resource.Type(fields[0]),
			ResourceName: fields[1],
			AlarmName:    fields[2],
			Threshold:    threshold,
			MetricName:   fields[4],
		}, nil

	case 3:
		threshold, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return CreateAction{}, fmt.Errorf("bad threshold %q: %w", fields[2], err)
		}
		return CreateAction{
			ResourceType: resource.TypeQueue,
			ResourceName: fields[0],
			AlarmName:    fields[1],
			Threshold:    threshold,
			MetricName:   policy.MetricFor(resource.TypeQueue),
		}, nil

	default:
		return CreateAction{}, fmt.Errorf("expected 3 or 5 fields, got %d", len(fields))
	}
}
