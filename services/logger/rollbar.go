package logsvc

import (
	"sort"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"go.uber.org/zap"

	"github.com/eduflexsms/eduflex/core"
	"github.com/eduflexsms/eduflex/core/account"
)

// RollbarLogger reports to Rollbar and writes locally through zap.
type RollbarLogger struct {
	zl     *zap.SugaredLogger
	report bool
}

var _ core.Logger = (*RollbarLogger)(nil)

// NewZap builds the local sink: development config in debug mode, production config otherwise.
func NewZap(conf *core.Config) (*zap.Logger, error) {
	if conf.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func NewRollbarLogger(zl *zap.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "")
	return &RollbarLogger{
		zl:     zl.Sugar().With("app", conf.AppName),
		report: conf.RollbarToken != "",
	}
}

// NewNopLogger discards everything.
func NewNopLogger() *RollbarLogger {
	return &RollbarLogger{zl: zap.NewNop().Sugar()}
}

func (l *RollbarLogger) Enable(enabled bool) {
	l.report = enabled
	rollbar.SetEnabled(enabled)
}

// Close flushes both sinks.
func (l *RollbarLogger) Close() {
	if l.report {
		rollbar.Wait()
	}
	_ = l.zl.Sync()
}

// expected fmt: msg | error, map[string]interface{}, account.Account
func (l *RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	var accSet bool
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		// set logged in Account
		if acc, ok := arg.(account.Account); ok {
			if !accSet { // only set one Account
				rollbar.SetPerson(acc.ID, acc.Username, acc.Email)
				accSet = true
			}
		} else {
			newArgs = append(newArgs, arg)
		}
	}
	if !accSet {
		rollbar.ClearPerson()
	}
	return newArgs
}

// fields turns args into zap key-value pairs.
func fields(args []interface{}) []interface{} {
	kv := make([]interface{}, 0, len(args)*2)
	for _, arg := range args {
		switch a := arg.(type) {
		case account.Account:
			kv = append(kv, "account", a.Username)
		case error:
			kv = append(kv, zap.Error(a))
		case map[string]interface{}:
			keys := make([]string, 0, len(a))
			for k := range a {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				kv = append(kv, k, a[k])
			}
		default:
			kv = append(kv, "extra", a)
		}
	}
	return kv
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) {
	if l.report {
		rollbar.Debug(l.prepare(msg, args)...)
	}
	l.zl.Debugw(msg, fields(args)...)
}

func (l *RollbarLogger) Info(msg string, args ...interface{}) {
	if l.report {
		rollbar.Info(l.prepare(msg, args)...)
	}
	l.zl.Infow(msg, fields(args)...)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	if l.report {
		rollbar.Warning(l.prepare(msg, args)...)
	}
	l.zl.Warnw(msg, fields(args)...)
}

func (l *RollbarLogger) Error(msg string, args ...interface{}) {
	if l.report {
		rollbar.Error(l.prepare(msg, args)...)
	}
	l.zl.Errorw(msg, fields(args)...)
}

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	if l.report {
		rollbar.Critical(l.prepare(msg, args)...)
		rollbar.Wait()
	}
	l.zl.Fatalw(msg, fields(args)...)
}
