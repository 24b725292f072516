package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger는 gorm의 logger.Interface를 구현하며, 모든 GORM 로그를 zap으로 기록합니다.
// slow query 임계시간과 RecordNotFound 에러 무시 옵션을 제공합니다.
type GormLogger struct {
	zap *zap.Logger
	// LogLevel은 기록할 로그의 최소 레벨을 지정합니다.
	LogLevel gormlogger.LogLevel
	// SlowThreshold는 쿼리 실행 시간이 이 시간보다 길면 slow query로 판단합니다. 0이면 사용하지 않습니다.
	SlowThreshold time.Duration
	// IgnoreRecordNotFoundError가 true이면 gorm.ErrRecordNotFound 에러는 로그에 남기지 않습니다.
	IgnoreRecordNotFoundError bool
}

// NewGormLogger는 지정한 옵션을 가진 GormLogger 인스턴스를 생성합니다.
func NewGormLogger(zapLogger *zap.Logger, level gormlogger.LogLevel, slowThreshold time.Duration, ignoreRecordNotFoundError bool) *GormLogger {
	return &GormLogger{
		zap:                       zapLogger,
		LogLevel:                  level,
		SlowThreshold:             slowThreshold,
		IgnoreRecordNotFoundError: ignoreRecordNotFoundError,
	}
}

// LogMode는 로그 레벨을 변경한 새로운 로거 인스턴스를 반환합니다.
func (g *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	newLogger := *g
	newLogger.LogLevel = level
	return &newLogger
}

// Info는 일반 정보를 zap을 통해 기록합니다.
func (g *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if g.LogLevel < gormlogger.Info {
		return
	}
	g.zap.Sugar().Infof(msg, data...)
}

// Warn는 경고 로그를 zap을 통해 기록합니다.
func (g *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if g.LogLevel < gormlogger.Warn {
		return
	}
	g.zap.Sugar().Warnf(msg, data...)
}

// Error는 에러 로그를 zap을 통해 기록합니다.
func (g *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if g.LogLevel < gormlogger.Error {
		return
	}
	g.zap.Sugar().Errorf(msg, data...)
}

// Trace는 쿼리 실행 시간, SQL, 영향을 받은 행 수, 에러 등 상세 정보를 기록합니다.
func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.LogLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	if err != nil && (!g.IgnoreRecordNotFoundError || !errors.Is(err, gorm.ErrRecordNotFound)) {
		g.zap.Error("GORM Trace Error",
			zap.Error(err),
			zap.Duration("elapsed", elapsed),
			zap.String("sql", sql),
			zap.Int64("rows", rows),
		)
		return
	}

	if g.SlowThreshold != 0 && elapsed > g.SlowThreshold {
		g.zap.Warn("GORM Slow Query",
			zap.Duration("elapsed", elapsed),
			zap.String("sql", sql),
			zap.Int64("rows", rows),
		)
		return
	}

	if g.LogLevel >= gormlogger.Info {
		g.zap.Info("GORM Query",
			zap.Duration("elapsed", elapsed),
			zap.String("sql", sql),
			zap.Int64("rows", rows),
		)
	}
}
