package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	dig_container "github.com/eduflexsms/eduflex/apps/api/di/dig"
	echoapi "github.com/eduflexsms/eduflex/apps/api/echo"
	"github.com/eduflexsms/eduflex/core"
	"github.com/eduflexsms/eduflex/core/account"
	"github.com/eduflexsms/eduflex/core/attendance"
	logsvc "github.com/eduflexsms/eduflex/services/logger"
)

// TODO:
// - persistent store for the stand-in backend (sqlite?) so demo edits survive restarts
func main() {
	c := dig_container.New()

	must(c.Invoke(func(
		conf *core.Config,
		rootLogger *logsvc.RollbarLogger,
		apiLogger core.Logger,
		validate *validator.Validate,
		translator ut.Translator,
		accSvc *account.Service,
		server *echoapi.Server,
	) {
		// =========================================================================
		// Initialize App

		apiLogger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
		defer rootLogger.Close()
		defer apiLogger.Info("Application stopped")

		core.InitValidators(validate, translator)
		account.InitValidators(validate, translator)
		attendance.InitValidators(validate, translator)

		if err := ensureAdmin(context.Background(), conf, accSvc); err != nil {
			apiLogger.Fatal(fmt.Sprintf("creating admin account: %v", err), err)
		}

		// =========================================================================
		// Start Debug Service
		//
		// /debug/vars - Added to the default mux by importing the expvar package.

		// Expose important info under /debug/vars.
		expvar.NewString("build").Set(conf.Build)
		expvar.NewString("env").Set(conf.Env)

		go func() {
			if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
				apiLogger.Error(fmt.Sprintf("debug server closed: %v", err), err)
			}
		}()

		// =========================================================================
		// Start API Service

		go server.Start()

		// =========================================================================
		// Shutdown

		select {
		case err := <-server.Errors():
			apiLogger.Fatal(fmt.Sprintf("server error: %v", err), err)

		case sig := <-server.ShutdownSignal():
			apiLogger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

			// give outstanding requests a deadline for completion
			ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
			defer cancel()

			// asking listener to shut down and shed load
			if err := server.Shutdown(ctx); err != nil {
				apiLogger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

				if err = server.Close(); err != nil {
					apiLogger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
				}
			}
		}
	}))
}

// ensureAdmin creates the configured owner account unless it already exists.
func ensureAdmin(ctx context.Context, conf *core.Config, svc *account.Service) error {
	uname := core.CleanString(conf.Server.AdminUsername, true /* lower */)
	if uname == "" {
		return nil
	}
	if _, err := svc.GetByUsernameOrEmail(ctx, uname); err != account.ErrNotFound {
		return err
	}
	_, err := svc.Create(ctx, account.NewAccount{
		Name:            "Administrator",
		Username:        uname,
		Password:        conf.Server.AdminPassword,
		PasswordConfirm: conf.Server.AdminPassword,
		Roles:           []string{account.RoleAdminOwner},
	})
	return err
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
