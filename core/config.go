package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env          string
	Build        string
	AppName      string
	Debug        bool
	TestMode     bool
	SecretKey    string
	RollbarToken string

	Server struct {
		Host                      string
		Address                   string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		PageSize                  int
		SeedDemo                  bool
		AdminUsername             string
		AdminPassword             string
	}

	API struct {
		BaseURL  string
		Timeout  time.Duration
		Username string
	}

	Mail struct {
		From           string
		SendgridAPIKey string
	}
}

// NewConfig loads the configuration for the current ENV (DEV (local; default), TEST, QA, PROD).
// Env vars are prefixed with the env name, e.g. DEV_SECRETKEY or PROD_API.BASEURL.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("appName", "EduFlex")
	conf.SetDefault("build", "develop")
	conf.SetDefault("secretKey", "k3f+9x!2vq$7m@w4^zr8d&h1c0n6t5y*")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.address", ":8000")
	conf.SetDefault("server.debugHost", "localhost:4000")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)
	conf.SetDefault("server.pageSize", 10)
	conf.SetDefault("server.seedDemo", true)
	conf.SetDefault("server.adminUsername", "admin")
	conf.SetDefault("server.adminPassword", "eduflex-Admin-2024")
	conf.SetDefault("api.baseURL", "http://localhost:8000")
	conf.SetDefault("api.timeout", 15*time.Second)
	conf.SetDefault("api.username", "")
	conf.SetDefault("mail.from", "EduFlex <no-reply@eduflex.lk>")
	conf.SetDefault("mail.sendgridApiKey", "")

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	if root, ok := projectRoot(); ok {
		dotEnvPath := filepath.Join(root, "config", ".env."+strings.ToLower(env))
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
			}
		} else if !os.IsNotExist(err) {
			log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
		}
	}
	conf.AutomaticEnv()

	c := &Config{
		Env:          env,
		Build:        conf.GetString("build"),
		AppName:      conf.GetString("appName"),
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		SecretKey:    conf.GetString("secretKey"),
		RollbarToken: conf.GetString("rollbarToken"),
	}
	c.Server.Host = conf.GetString("server.host")
	c.Server.Address = conf.GetString("server.address")
	c.Server.DebugHost = conf.GetString("server.debugHost")
	c.Server.ShutdownTimeout = conf.GetDuration("server.shutdownTimeout")
	c.Server.JWTExpirationDelta = conf.GetDuration("server.jwtExpirationDelta")
	c.Server.JWTRefreshExpirationDelta = conf.GetDuration("server.jwtRefreshExpirationDelta")
	c.Server.PageSize = conf.GetInt("server.pageSize")
	c.Server.SeedDemo = conf.GetBool("server.seedDemo")
	c.Server.AdminUsername = conf.GetString("server.adminUsername")
	c.Server.AdminPassword = conf.GetString("server.adminPassword")
	c.API.BaseURL = strings.TrimRight(conf.GetString("api.baseURL"), "/")
	c.API.Timeout = conf.GetDuration("api.timeout")
	c.API.Username = conf.GetString("api.username")
	c.Mail.From = conf.GetString("mail.from")
	c.Mail.SendgridAPIKey = conf.GetString("mail.sendgridApiKey")
	return c
}

// NewTestConfig returns a config suitable for tests, without touching the environment.
func NewTestConfig() *Config {
	c := &Config{
		Env:       "TEST",
		Build:     "test",
		AppName:   "EduFlex",
		TestMode:  true,
		SecretKey: "test-secret",
	}
	c.Server.Host = "localhost"
	c.Server.ShutdownTimeout = time.Second
	c.Server.JWTExpirationDelta = time.Hour
	c.Server.JWTRefreshExpirationDelta = 4 * time.Hour
	c.Server.PageSize = 10
	c.Server.AdminUsername = "admin"
	c.Server.AdminPassword = "test-Admin-pass"
	c.API.Timeout = 5 * time.Second
	c.Mail.From = "EduFlex <no-reply@test.lk>"
	return c
}

// DefaultFromEmail parses Mail.From, falling back to a bare no-reply address.
func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.Mail.From)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: "no-reply@eduflex.lk"}
	}
	return *addr
}
