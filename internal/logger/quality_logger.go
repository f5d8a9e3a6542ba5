package logger

import (
	"github.com/sirupsen/logrus"
)

// QualityLogger provides dedicated logging for window rollups and record resolution.
type QualityLogger struct {
	*logrus.Entry
}

// NewQualityLogger creates a new quality logger.
func NewQualityLogger(baseLogger *logrus.Logger) *QualityLogger {
	return &QualityLogger{
		Entry: OrDefault(baseLogger).WithField("component", "quality"),
	}
}

// LogUnparseable logs a record dropped because its timestamp could not be parsed.
func (q *QualityLogger) LogUnparseable(source string, recordID int64, raw string) {
	q.WithFields(logrus.Fields{
		"source":    source,
		"record_id": recordID,
		"timestamp": raw,
	}).Warn("Dropping record with unparseable timestamp")
}

// LogAggregation logs a computed window rollup.
func (q *QualityLogger) LogAggregation(start, end string, total, good, bad, unparseable int) {
	q.WithFields(logrus.Fields{
		"window_start": start,
		"window_end":   end,
		"total_count":  total,
		"good_count":   good,
		"bad_count":    bad,
		"unparseable":  unparseable,
	}).Info("Quality window aggregated")
}

// LogResolution logs a latest-record resolution.
func (q *QualityLogger) LogResolution(groupBy, filter string, rows, records int) {
	q.WithFields(logrus.Fields{
		"group_by": groupBy,
		"filter":   filter,
		"rows":     rows,
		"records":  records,
	}).Debug("Latest records resolved")
}
