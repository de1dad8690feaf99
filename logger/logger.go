package logger

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/op/go-logging"
)

const maxBufferedLogs = 10240

var (
	logger    *logging.Logger
	bufferMu  sync.Mutex
	logBuffer []bufferedLog
)

type bufferedLog struct {
	time  string
	level logging.Level
	log   string
}

func init() {
	InitLogger(logging.INFO)
}

// InitLogger 重新配置全局 logger，可重复调用（测试里会用到）。
func InitLogger(level logging.Level) {
	newLogger := logging.MustGetLogger("x-lotto")
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	format := logging.MustStringFormatter(`%{time:2006/01/02 15:04:05} %{level} - %{message}`)

	leveled := logging.AddModuleLevel(logging.NewBackendFormatter(backend, format))
	leveled.SetLevel(level, "x-lotto")
	newLogger.SetBackend(leveled)

	logger = newLogger
}

// ParseLevel maps a config string onto a go-logging level, INFO when unknown.
func ParseLevel(s string) logging.Level {
	level, err := logging.LogLevel(s)
	if err != nil {
		return logging.INFO
	}
	return level
}

func Debug(args ...any) {
	logger.Debug(args...)
	addToBuffer("DEBUG", fmt.Sprint(args...))
}

func Debugf(format string, args ...any) {
	logger.Debugf(format, args...)
	addToBuffer("DEBUG", fmt.Sprintf(format, args...))
}

func Info(args ...any) {
	logger.Info(args...)
	addToBuffer("INFO", fmt.Sprint(args...))
}

func Infof(format string, args ...any) {
	logger.Infof(format, args...)
	addToBuffer("INFO", fmt.Sprintf(format, args...))
}

func Notice(args ...any) {
	logger.Notice(args...)
	addToBuffer("NOTICE", fmt.Sprint(args...))
}

func Noticef(format string, args ...any) {
	logger.Noticef(format, args...)
	addToBuffer("NOTICE", fmt.Sprintf(format, args...))
}

func Warning(args ...any) {
	logger.Warning(args...)
	addToBuffer("WARNING", fmt.Sprint(args...))
}

func Warningf(format string, args ...any) {
	logger.Warningf(format, args...)
	addToBuffer("WARNING", fmt.Sprintf(format, args...))
}

func Error(args ...any) {
	logger.Error(args...)
	addToBuffer("ERROR", fmt.Sprint(args...))
}

func Errorf(format string, args ...any) {
	logger.Errorf(format, args...)
	addToBuffer("ERROR", fmt.Sprintf(format, args...))
}

func addToBuffer(level string, newLog string) {
	t := time.Now()
	lvl, err := logging.LogLevel(level)
	if err != nil {
		lvl = logging.INFO
	}

	bufferMu.Lock()
	defer bufferMu.Unlock()
	if len(logBuffer) >= maxBufferedLogs {
		logBuffer = logBuffer[1:]
	}
	logBuffer = append(logBuffer, bufferedLog{
		time:  t.Format("2006/01/02 15:04:05"),
		level: lvl,
		log:   newLog,
	})
}

// GetLogs 返回最近 c 条级别不低于 level 的日志，旧的在前。
func GetLogs(c int, level string) []string {
	want := ParseLevel(level)

	bufferMu.Lock()
	defer bufferMu.Unlock()

	var output []string
	for i := len(logBuffer) - 1; i >= 0 && len(output) < c; i-- {
		entry := logBuffer[i]
		if entry.level <= want {
			output = append(output, fmt.Sprintf("%s %s - %s", entry.time, entry.level, entry.log))
		}
	}
	for l, r := 0, len(output)-1; l < r; l, r = l+1, r-1 {
		output[l], output[r] = output[r], output[l]
	}
	return output
}
