// Package log
// @Title  日志
// @Description  基于logrus的系统日志,支持文件切割
// @Author  yr  2025/3/13
// @Update  yr  2025/6/20
package log

import (
	"context"
	"io"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/njtc406/logrus"
)

// ILogger 日志对象, *logrus.Logger 与 *logrus.Entry 均满足写入部分
type ILogger interface {
	logrus.Ext1FieldLogger

	WithContext(ctx context.Context) *logrus.Entry
	SetLevel(level logrus.Level)
	SetOutput(output io.Writer)
	SetFormatter(formatter logrus.Formatter)
}

type LoggerConf struct {
	Path         string        `binding:""`                                              // 日志文件路径
	Name         string        `binding:""`                                              // 日志文件名称
	Level        string        `binding:"oneof=panic fatal error warn info debug trace"` // 日志写入级别
	Caller       bool          `binding:""`                                              // 是否打印调用者
	MaxAge       time.Duration `binding:"min=1m,max=720h"`                               // 日志保留时间
	RotationTime time.Duration `binding:"min=1m,max=24h"`                                // 日志切割时间
}

var levelMap = map[string]logrus.Level{
	"panic": logrus.PanicLevel,
	"fatal": logrus.FatalLevel,
	"error": logrus.ErrorLevel,
	"warn":  logrus.WarnLevel,
	"info":  logrus.InfoLevel,
	"debug": logrus.DebugLevel,
	"trace": logrus.TraceLevel,
}

var locker sync.Mutex
var writerLog = map[ILogger]io.WriteCloser{}

func logWriter(logger ILogger, writer io.WriteCloser) {
	locker.Lock()
	defer locker.Unlock()
	if _, ok := writerLog[logger]; ok {
		return
	}
	writerLog[logger] = writer
}

func logRelease(logger ILogger) {
	locker.Lock()
	defer locker.Unlock()
	if writer, ok := writerLog[logger]; ok {
		_ = writer.Close()
		delete(writerLog, logger)
	}
}

func fixConf(conf *LoggerConf) *LoggerConf {
	if conf == nil {
		conf = &LoggerConf{}
	}
	if conf.Level == "" {
		conf.Level = "info"
	}
	if conf.MaxAge == 0 {
		conf.MaxAge = time.Hour * 24 * 15
	}
	if conf.RotationTime == 0 {
		conf.RotationTime = time.Hour * 24
	}
	return conf
}

// NewDefaultLogger 创建一个通用日志对象
// conf.Name为空且开启标准输出时只打印到stdout, 都未开启时不输出任何日志
func NewDefaultLogger(conf *LoggerConf, openStdout bool) (ILogger, error) {
	conf = fixConf(conf)
	var writers []io.Writer
	var writerCloser io.WriteCloser

	if len(conf.Name) > 0 {
		filePath := conf.Path
		if len(filePath) == 0 {
			filePath = "./"
		}
		pattern := "_%Y%m%d.log"
		if conf.RotationTime < time.Hour {
			pattern = "_%Y%m%d%H%M.log"
		} else if conf.RotationTime < time.Hour*24 {
			pattern = "_%Y%m%d%H.log"
		}

		w, err := rotatelogs.New(
			path.Join(filePath, conf.Name)+pattern,
			rotatelogs.WithMaxAge(conf.MaxAge),
			rotatelogs.WithRotationTime(conf.RotationTime),
		)
		if err != nil {
			return nil, err
		}
		writers = append(writers, w)
		writerCloser = w
	}

	if openStdout {
		writers = append(writers, os.Stdout)
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	level := strings.ToLower(conf.Level)
	if _, ok := levelMap[level]; !ok {
		level = "error"
	}

	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05.000",
		FullTimestamp:   true,
	})
	l.SetLevel(levelMap[level])
	l.SetReportCaller(conf.Caller)
	l.SetOutput(io.MultiWriter(writers...))

	if writerCloser != nil {
		logWriter(l, writerCloser)
	}
	return l, nil
}

func Release(logger ILogger) {
	if logger == nil {
		return
	}
	logRelease(logger)
}
