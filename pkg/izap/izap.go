// Package izap zap logger used by the fixtures, silent until Init is called.
package izap

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 适配器
const (
	AdapterConsole = "console"
	AdapterFile    = "file"
)

// Config 日志配置
type Config struct {
	Adapter string `yaml:"adapter" json:"adapter" validate:"omitempty,oneof=console file"` // 适配器,默认console
	Level   int    `yaml:"level" json:"level" validate:"min=-1,max=5"`                      // 日志等级, zapcore.Level, 默认info(0)
	// see lumberjack.Logger, file adapter only
	FileName   string `yaml:"fileName" json:"fileName" validate:"required_if=Adapter file"` // 文件名
	MaxSize    int    `yaml:"maxSize" json:"maxSize" validate:"min=0"`                      // 每个日志文件最大尺寸(MB), 默认100MB
	MaxAge     int    `yaml:"maxAge" json:"maxAge" validate:"min=0"`                        // 日志文件保存天数, 默认0不删除
	MaxBackups int    `yaml:"maxBackups" json:"maxBackups" validate:"min=0"`                // 日志文件保存备份数, 默认0都保存
	LocalTime  bool   `yaml:"localTime" json:"localTime"`                                   // 是否使用本地时间
	Compress   bool   `yaml:"compress" json:"compress"`                                     // gzip压缩
	Stack      bool   `yaml:"stack" json:"stack"`                                           // 使能栈调试输出
}

var (
	level  = zap.NewAtomicLevel()
	logger atomic.Value // *zap.Logger
)

func init() {
	logger.Store(zap.NewNop())
}

// New build a logger from cfg, console output goes to stdout.
func New(cfg Config) (*zap.Logger, error) {
	return build(cfg, os.Stdout)
}

func build(cfg Config, console io.Writer) (*zap.Logger, error) {
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("izap: invalid config, %w", err)
	}
	level.SetLevel(zapcore.Level(cfg.Level))

	var core zapcore.Core
	var options []zap.Option
	switch cfg.Adapter {
	case AdapterFile:
		encodeCfg := zap.NewProductionEncoderConfig()
		encodeCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		core = zapcore.NewCore(
			zapcore.NewJSONEncoder(encodeCfg),
			zapcore.AddSync(&lumberjack.Logger{ // 文件切割
				Filename:   cfg.FileName,
				MaxSize:    cfg.MaxSize,
				MaxAge:     cfg.MaxAge,
				MaxBackups: cfg.MaxBackups,
				LocalTime:  cfg.LocalTime,
				Compress:   cfg.Compress,
			}),
			level)
	default:
		encodeCfg := zap.NewDevelopmentEncoderConfig()
		encodeCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		core = zapcore.NewCore(
			zapcore.NewConsoleEncoder(encodeCfg),
			zapcore.AddSync(console),
			level)
	}
	if cfg.Stack {
		options = append(options,
			zap.AddCaller(),
			zap.AddStacktrace(zap.WarnLevel),
		)
	}
	return zap.New(core, options...), nil
}

// Init build a logger from cfg and install it as the fixtures' logger and zap's globals.
func Init(cfg Config) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	ReplaceLogger(l)
	zap.ReplaceGlobals(l)
	return nil
}

// Logger the fixtures' logger, a no-op logger unless Init or ReplaceLogger was called.
func Logger() *zap.Logger {
	return logger.Load().(*zap.Logger)
}

// ReplaceLogger install l, nil restores the no-op logger.
func ReplaceLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

// SetLevel 设置日志等级,线程安全
func SetLevel(l zapcore.Level) {
	level.SetLevel(l)
}

// Level get logger level
func Level() zapcore.Level {
	return level.Level()
}
