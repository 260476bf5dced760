// Package notification is the boundary to the verification delivery system.
// Delivery itself is not implemented here; registration only records that a
// dispatch was requested.
package notification

import (
	"context"
	"log/slog"
	"time"
)

// Sender requests delivery of a verification message to a user over the
// given channel and reports when the request was accepted.
type Sender interface {
	Send(ctx context.Context, userID, channel string) (time.Time, error)
}

// LogSender is the stub Sender: it logs the dispatch and reports the current
// time as sent-at.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, userID, channel string) (time.Time, error) {
	sentAt := time.Now().UTC()
	s.logger.InfoContext(ctx, "verification dispatch requested",
		"user_id", userID,
		"channel", channel,
	)
	return sentAt, nil
}
