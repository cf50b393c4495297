// Package config
// @Title  节点配置解析
// @Description  本地yaml加环境变量,解析后统一校验
// @Author  yr  2025/3/20
// @Update  yr  2025/6/20
package config

import (
	"os"
	"path"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/njtc406/viper"

	"github.com/njtc406/emberrpc/rpc/def"
	"github.com/njtc406/emberrpc/rpc/utils/log"
	"github.com/njtc406/emberrpc/rpc/utils/validate"
)

var (
	runtimeViper = viper.New()
	Conf         = new(conf)
)

const defaultConfPath = "./configs"

func Init(confPath string) {
	parseNodeConfig(confPath)
	initDir()
}

// parseNodeConfig 解析本地配置文件
func parseNodeConfig(confPath string) {
	// .env中的变量只做补充,不覆盖已有环境变量
	_ = godotenv.Load()

	envConfPath := os.Getenv("EMBER_CONF_PATH")
	if envConfPath != "" {
		confPath = envConfPath
	}
	if confPath == "" {
		confPath = defaultConfPath
	}

	runtimeViper.SetConfigType("yaml")
	runtimeViper.SetConfigName("node")
	runtimeViper.AddConfigPath(confPath)

	// 环境变量优先级低于配置文件,需要环境变量生效就不要在文件中配置同名项
	runtimeViper.SetEnvPrefix("EMBER_")
	runtimeViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	runtimeViper.AutomaticEnv()

	setDefaultValues()

	if err := runtimeViper.ReadInConfig(); err != nil {
		// 没有配置文件时全部使用默认值
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(err)
		}
	}

	if err := runtimeViper.Unmarshal(Conf); err != nil {
		panic(err)
	}

	if err := validate.Struct(Conf); err != nil {
		panic(validate.Translate(err))
	}
}

// initDir 创建必要的目录
func initDir() {
	createDirIfNotExists(Conf.NodeConf.PVPath)
	createDirIfNotExists(Conf.SystemLogger.Path)
}

func createDirIfNotExists(dir string) {
	if dir == "" {
		return
	}
	if err := os.MkdirAll(dir, 0644); err != nil {
		panic(err)
	}
}

// setDefaultValues 设置默认值
func setDefaultValues() {
	runtimeViper.SetDefault("NodeConf", &NodeConf{
		SystemStatus: Debug,
		PVPath:       def.DefaultPVPath,
		AntsPoolSize: def.DefaultAntsPoolSize,
		DedupTTL:     def.DefaultDedupTTL,
	})

	runtimeViper.SetDefault("SystemLogger", &log.LoggerConf{
		Path:         path.Join(def.DefaultPVPath, "logs"),
		Name:         "system",
		Level:        "error",
		Caller:       true,
		MaxAge:       time.Hour * 24 * 15,
		RotationTime: time.Hour * 24,
	})

	runtimeViper.SetDefault("ClusterConf", &ClusterConf{
		ETCDConf: &ETCDConf{
			Endpoints:   []string{"127.0.0.1:2379"},
			DialTimeout: 3 * time.Second,
		},
		RPCServers: []*RPCServer{
			{
				Addr:   "0.0.0.0:6688",
				Protoc: "tcp",
				Type:   def.RpcTypeRpcx,
			},
		},
		DiscoveryConf: &EtcdDiscoveryConf{
			Path: def.DefaultDiscoveryPath,
			TTL:  3,
		},
	})
}
