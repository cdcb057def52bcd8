package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/eduflexsms/eduflex/core"
	"github.com/eduflexsms/eduflex/core/account"
)

type accountApi struct {
	auth     *authenticator
	svc      *account.Service
	mailer   core.EmailService
	validate *validator.Validate
}

func registerAccountAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	auth *authenticator,
	svc *account.Service,
	mailer core.EmailService,
	validate *validator.Validate,
) {
	api := accountApi{
		auth:     auth,
		svc:      svc,
		mailer:   mailer,
		validate: validate,
	}

	// un-authed endpoints
	// TODO: rate limit `/auth/login`
	g.POST("/auth/login", api.login)

	// authed endpoints
	g.POST("/auth/token-refresh", api.refreshToken, jwt)
	g.GET("/auth/me", api.me, jwt)

	tg := g.Group("/teachers", jwt, adminMiddleware())
	tg.GET("", api.queryTeachers)
	tg.POST("", api.createTeacher)
	tg.DELETE("/:id", api.destroyTeacher)
}

// Handlers

func (api *accountApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := api.auth.authenticate(ctx.Request().Context(), data.Username, data.Password)
	if err != nil {
		return err
	}
	token, err := api.auth.GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (api *accountApi) refreshToken(ctx echo.Context) error {
	token, err := api.auth.refreshToken(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (api *accountApi) me(ctx echo.Context) error {
	acc, err := getContextAccount(ctx, api.svc)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, acc)
}

func (api *accountApi) queryTeachers(ctx echo.Context) error {
	teachers, err := api.svc.Teachers(ctx.Request().Context(), ctx.QueryParam("search"))
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	if teachers == nil {
		teachers = []account.Account{}
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *accountApi) createTeacher(ctx echo.Context) error {
	var data account.NewAccount
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAccount")
	}
	// accounts created here are always teachers
	data.Roles = []string{account.RoleTeacher}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	acc, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating teacher")
	}
	if msg := account.NewWelcomeEmail(acc); msg != nil && api.mailer != nil {
		api.mailer.SendMessages(msg)
	}
	return ctx.JSON(http.StatusCreated, acc)
}

func (api *accountApi) destroyTeacher(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	acc, err := api.svc.GetByID(rctx, ctx.Param("id"))
	if err != nil {
		if err == account.ErrNotFound {
			return notFound(err)
		}
		return errors.Wrap(err, "finding teacher")
	}
	if acc.IsAdmin() || !acc.IsTeacher() {
		return notFound(account.ErrNotFound)
	}

	if err := api.svc.Delete(rctx, acc.ID); err != nil {
		return errors.Wrap(err, "deleting teacher")
	}
	return ctx.NoContent(http.StatusNoContent)
}
