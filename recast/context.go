package recast

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// / Recast log severity.
type RcLogCategory int

const (
	RC_LOG_PROGRESS RcLogCategory = iota + 1
	RC_LOG_WARNING
	RC_LOG_ERROR
)

// / Recast performance timer labels.
type RcTimerLabel int

const (
	RC_TIMER_TOTAL RcTimerLabel = iota
	RC_TIMER_TEMP
	RC_TIMER_RASTERIZE_TRIANGLES
	RC_TIMER_BUILD_COMPACTHEIGHTFIELD
	RC_TIMER_BUILD_CONTOURS
	RC_TIMER_BUILD_POLYMESH
	RC_TIMER_BUILD_POLYMESHDETAIL
	RC_TIMER_FILTER_BORDER
	RC_TIMER_FILTER_WALKABLE
	RC_TIMER_FILTER_LOW_OBSTACLES
	RC_TIMER_ERODE_AREA
	RC_TIMER_MARK_CONVEXPOLY_AREA
	RC_TIMER_BUILD_DISTANCEFIELD
	RC_TIMER_BUILD_REGIONS
	RC_TIMER_MAX
)

// / Provides an interface for optional logging and performance tracking of
// / the build process. Diagnostics are structured events carrying a
// / severity, an opaque code and a message; the core never writes to
// / stdout directly.
type BuildContext struct {
	logger *zap.Logger

	startTime [RC_TIMER_MAX]time.Time
	accTime   [RC_TIMER_MAX]time.Duration

	logEnabled   bool
	timerEnabled bool
}

func NewBuildContext(logger *zap.Logger) *BuildContext {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BuildContext{
		logger:       logger,
		logEnabled:   true,
		timerEnabled: true,
	}
}

func (ctx *BuildContext) EnableLog(state bool) {
	ctx.logEnabled = state
}

func (ctx *BuildContext) EnableTimer(state bool) {
	ctx.timerEnabled = state
}

// / Logs a structured build event.
func (ctx *BuildContext) Log(category RcLogCategory, code int, format string, args ...any) {
	if !ctx.logEnabled {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fields := []zap.Field{zap.Int("code", code)}
	switch category {
	case RC_LOG_WARNING:
		ctx.logger.Warn(msg, fields...)
	case RC_LOG_ERROR:
		ctx.logger.Error(msg, fields...)
	default:
		ctx.logger.Info(msg, fields...)
	}
}

func (ctx *BuildContext) Progressf(format string, args ...any) {
	ctx.Log(RC_LOG_PROGRESS, 0, format, args...)
}

func (ctx *BuildContext) Warningf(format string, args ...any) {
	ctx.Log(RC_LOG_WARNING, 0, format, args...)
}

func (ctx *BuildContext) Errorf(format string, args ...any) {
	ctx.Log(RC_LOG_ERROR, 0, format, args...)
}

func (ctx *BuildContext) ResetTimers() {
	for i := range ctx.accTime {
		ctx.accTime[i] = 0
	}
}

func (ctx *BuildContext) StartTimer(label RcTimerLabel) {
	if !ctx.timerEnabled {
		return
	}
	ctx.startTime[label] = time.Now()
}

func (ctx *BuildContext) StopTimer(label RcTimerLabel) {
	if !ctx.timerEnabled {
		return
	}
	ctx.accTime[label] += time.Since(ctx.startTime[label])
}

// / Returns the total accumulated time of the specified performance timer.
func (ctx *BuildContext) AccumulatedTime(label RcTimerLabel) time.Duration {
	return ctx.accTime[label]
}
