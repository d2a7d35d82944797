package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"

	"gin-gorm-market/internal/domain"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RateLimit struct {
	RPS   float64
	Burst int
	// 每个来源 IP 的令牌桶，IPRPS <= 0 时关闭
	IPRPS   float64
	IPBurst int
	// 每用户写操作窗口；配置 redis 时多实例共享，否则进程内限流，UserMax <= 0 时关闭
	UserWindowSec int
	UserMax       int
}

type CORS struct {
	AllowOrigins []string
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type ProtectedFields struct {
	Version      string
	MatchSubtree bool
	Fields       []string
}

type Cascade struct {
	Comments  bool
	Reactions bool
	Buyers    bool
}

type Market struct {
	ProtectedFields ProtectedFields
	Cascade         Cascade
	PageSizeMax     int
}

type Config struct {
	App       App
	Log       Log
	JWT       JWT
	DB        DB
	Redis     Redis `mapstructure:"redis"`
	RateLimit RateLimit
	CORS      CORS
	Market    Market
}

// Policy 将配置转换为注入 ProfileService 的黑名单
func (m Market) Policy() domain.ProtectedFields {
	return domain.NewProtectedFields(m.ProtectedFields.Version, m.ProtectedFields.MatchSubtree, m.ProtectedFields.Fields)
}

func (m Market) CascadePolicy() domain.CascadePolicy {
	return domain.CascadePolicy{Comments: m.Cascade.Comments, Reactions: m.Cascade.Reactions, Buyers: m.Cascade.Buyers}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "gin-gorm-market")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readtimeoutsec", 5)
	v.SetDefault("app.http.writetimeoutsec", 10)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.admin.port", 8081)
	v.SetDefault("log.level", "info")
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.maxopenconns", 20)
	v.SetDefault("db.maxidleconns", 10)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("jwt.accesstokenttlmin", 60)
	v.SetDefault("ratelimit.rps", 200)
	v.SetDefault("ratelimit.burst", 400)
	v.SetDefault("ratelimit.iprps", 20)
	v.SetDefault("ratelimit.ipburst", 40)
	v.SetDefault("ratelimit.userwindowsec", 60)
	v.SetDefault("ratelimit.usermax", 120)
	v.SetDefault("market.protectedfields.version", "1")
	v.SetDefault("market.protectedfields.matchsubtree", false)
	v.SetDefault("market.protectedfields.fields", domain.DefaultProtectedFieldList)
	v.SetDefault("market.cascade.comments", true)
	v.SetDefault("market.cascade.reactions", true)
	v.SetDefault("market.cascade.buyers", true)
	v.SetDefault("market.pagesizemax", 100)
}

// validate 受保护字段名单不能为空，否则 rank 等字段会变成可写
func (c *Config) validate() error {
	for _, f := range c.Market.ProtectedFields.Fields {
		if strings.TrimSpace(f) != "" {
			return nil
		}
	}
	return fmt.Errorf("config: market.protectedFields.fields must not be empty")
}

// Read 读取 YAML 并叠加 APP_ 前缀的环境变量
func Read(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func Load(path string) *Config {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	c, err := Read(path)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return c
}
