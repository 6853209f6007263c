package logs

import (
	"io"
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
	"github.com/reusedev/autowriter-client/config"
	"github.com/rs/zerolog"
)

var (
	// Logger writes to stderr until InitLogger runs, so library callers and tests get output without setup.
	Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

func InitLogger(cfg config.Log) {
	// 设置日志级别
	level := parseLogLevel(cfg.LogLevel)
	zerolog.SetGlobalLevel(level)

	var writers []io.Writer

	if cfg.LogFile != "" {
		logFile := &lumberjack.Logger{
			Filename:   cfg.LogFile,       // 日志文件路径
			MaxSize:    cfg.LogMaxSize,    // 单个日志文件最大大小（MB）
			MaxBackups: cfg.LogMaxBackups, // 保留旧日志文件的最大数量
			MaxAge:     cfg.LogMaxAge,     // 日志文件保留的最大天数
			Compress:   true,
		}
		writers = append(writers, logFile)
	}

	// debug级别或未配置日志文件时输出到控制台；stdout 留给响应内容
	if level <= zerolog.DebugLevel || cfg.LogFile == "" {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr})
	}

	Logger = zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Logger()
}

// parseLogLevel 解析日志级别字符串为zerolog.Level
func parseLogLevel(levelStr string) zerolog.Level {
	switch strings.ToLower(levelStr) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}
