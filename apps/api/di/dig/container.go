package dig_container

import (
	"context"
	"fmt"
	"log"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	echoapi "github.com/eduflexsms/eduflex/apps/api/echo"
	"github.com/eduflexsms/eduflex/core"
	"github.com/eduflexsms/eduflex/core/account"
	"github.com/eduflexsms/eduflex/core/student"
	emailsvc "github.com/eduflexsms/eduflex/services/email"
	logsvc "github.com/eduflexsms/eduflex/services/logger"
	inmemdb "github.com/eduflexsms/eduflex/storage/database/inmem"
)

const (
	demoStudentsPerGrade = 8
	demoSeed             = 2024
)

type StoreLoggerParam struct {
	dig.In
	Logger core.Logger `name:"storeLogger"`
}

func newZap(conf *core.Config) *zap.Logger {
	zl, err := logsvc.NewZap(conf)
	if err != nil {
		log.Fatalf("setting up zap: %v", err)
	}
	return zl
}

func newLogger(zl *zap.Logger, conf *core.Config) *logsvc.RollbarLogger {
	logger := logsvc.NewRollbarLogger(zl.Named("api"), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newAppLogger(logger *logsvc.RollbarLogger) core.Logger {
	return logger
}

func newStoreLogger(zl *zap.Logger, conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(zl.Named("store"), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newStore(conf *core.Config, loggerParam StoreLoggerParam) *inmemdb.DB {
	db, err := inmemdb.Open()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("opening store: %v", err), err)
	}
	if conf.Server.SeedDemo {
		if err := inmemdb.Seed(context.Background(), db, demoStudentsPerGrade, demoSeed); err != nil {
			loggerParam.Logger.Fatal(fmt.Sprintf("seeding store: %v", err), err)
		}
		loggerParam.Logger.Info("Demo data seeded", map[string]interface{}{"studentsPerGrade": demoStudentsPerGrade})
	}
	return db
}

func newServer(
	conf *core.Config,
	logger core.Logger,
	accSvc *account.Service,
	stuSvc *student.Service,
	mailer core.EmailService,
	validate *validator.Validate,
	translator ut.Translator,
) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		AccountSvc: accSvc,
		StudentSvc: stuSvc,
		Mailer:     mailer,
		Validate:   validate,
		Translator: translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newZap))
	must(c.Provide(newLogger))
	must(c.Provide(newAppLogger))
	must(c.Provide(newStoreLogger, dig.Name("storeLogger")))
	must(c.Provide(newStore))
	must(c.Provide(inmemdb.NewAccountRepository))
	must(c.Provide(inmemdb.NewStudentRepository, dig.As(new(student.Repository))))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(account.NewService))
	must(c.Provide(student.NewService))
	must(c.Provide(emailsvc.NewService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
