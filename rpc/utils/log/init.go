package log

// SysLogger 系统日志,未显式Init时输出到stdout
var SysLogger ILogger

func init() {
	logger, err := NewDefaultLogger(nil, true)
	if err != nil {
		panic(err)
	}
	SysLogger = logger
}

// Init 按配置重建系统日志
func Init(conf *LoggerConf, isDebug bool) {
	logger, err := NewDefaultLogger(conf, isDebug)
	if err != nil {
		panic(err)
	}
	old := SysLogger
	SysLogger = logger
	Release(old)

	SysLogger.Info("-------->system log init ok<---------")
}

func Close() {
	SysLogger.Info("-------->system log release<---------")
	Release(SysLogger)
}
