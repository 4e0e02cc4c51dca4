package enum

import (
	"time"

	"github.com/yanun0323/errors"
)

var ErrUnknownTimeFrame = errors.New("unknown time frame")

// TimeFrame is the fixed duration defining candle boundaries.
type TimeFrame uint8

const (
	_time_frame_beg TimeFrame = iota
	TimeFrameOneMinute
	TimeFrameFiveMinutes
	TimeFrameFifteenMinutes
	TimeFrameThirtyMinutes
	TimeFrameTwoHours
	TimeFrameFourHours
	TimeFrameOneDay
	_time_frame_end
)

func (tf TimeFrame) IsAvailable() bool {
	return tf > _time_frame_beg && tf < _time_frame_end
}

func (tf TimeFrame) Duration() time.Duration {
	switch tf {
	case TimeFrameOneMinute:
		return time.Minute
	case TimeFrameFiveMinutes:
		return 5 * time.Minute
	case TimeFrameFifteenMinutes:
		return 15 * time.Minute
	case TimeFrameThirtyMinutes:
		return 30 * time.Minute
	case TimeFrameTwoHours:
		return 2 * time.Hour
	case TimeFrameFourHours:
		return 4 * time.Hour
	case TimeFrameOneDay:
		return 24 * time.Hour
	default:
		return 0
	}
}

// CandleEndTime returns the exclusive end of the candle interval containing t.
// Boundaries are floor-aligned to the frame duration.
func (tf TimeFrame) CandleEndTime(t time.Time) time.Time {
	d := tf.Duration()
	return t.Truncate(d).Add(d)
}

func (tf TimeFrame) String() string {
	switch tf {
	case TimeFrameOneMinute:
		return "1m"
	case TimeFrameFiveMinutes:
		return "5m"
	case TimeFrameFifteenMinutes:
		return "15m"
	case TimeFrameThirtyMinutes:
		return "30m"
	case TimeFrameTwoHours:
		return "2h"
	case TimeFrameFourHours:
		return "4h"
	case TimeFrameOneDay:
		return "1d"
	default:
		return "unknown"
	}
}

// ParseTimeFrame parses the short form used in configuration files.
func ParseTimeFrame(s string) (TimeFrame, error) {
	for tf := _time_frame_beg + 1; tf < _time_frame_end; tf++ {
		if tf.String() == s {
			return tf, nil
		}
	}
	return _time_frame_beg, errors.Wrap(ErrUnknownTimeFrame, s)
}
