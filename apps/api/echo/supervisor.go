package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kundi/core"
	"github.com/trezcool/kundi/core/group"
	"github.com/trezcool/kundi/core/marks"
	"github.com/trezcool/kundi/core/supervisor"
)

type supervisorApi struct {
	deps ServerDeps
}

func registerSupervisorAPI(g *echo.Group, auth echo.MiddlewareFunc, deps ServerDeps) {
	api := supervisorApi{deps: deps}

	sg := g.Group("/supervisors")

	// un-authed endpoints
	sg.POST("/register", api.register)
	sg.POST("/login", api.login)

	// authed endpoints
	ag := sg.Group("", auth)
	ag.GET("/my-groups", api.myGroups)
	ag.PUT("/marks", api.upsertMark)
	ag.PUT("/preferences", api.updatePreferences)
}

// Handlers

func (api *supervisorApi) register(ctx echo.Context) error {
	var data supervisor.NewSupervisor
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSupervisor")
	}
	if err := data.Validate(api.deps.Validate, api.deps.SupervisorSvc); err != nil {
		return err
	}

	sup, err := api.deps.SupervisorSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == supervisor.ErrSupervisorExists {
			return core.NewValidationError(supervisor.ErrSupervisorExists)
		}
		return errors.Wrap(err, "creating supervisor")
	}

	return ctx.JSON(http.StatusCreated, sup)
}

func (api *supervisorApi) login(ctx echo.Context) error {
	var data supervisor.Login
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Login")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	claims, err := authenticate(ctx.Request().Context(), data, api.deps.SupervisorSvc, api.deps.Conf)
	if err != nil {
		return err
	}
	token, err := GenerateToken(claims, api.deps.Conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *supervisorApi) myGroups(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	groups, err := api.deps.GroupSvc.QueryBySupervisor(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying supervisor groups")
	}
	if groups == nil {
		groups = []group.AssignedGroup{}
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *supervisorApi) upsertMark(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data marks.UpsertMark
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpsertMark")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	// marks can only be recorded for the caller's own groups
	grp, err := api.deps.GroupSvc.GetByID(ctx.Request().Context(), data.GroupID)
	if err != nil {
		if errors.Cause(err) == group.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding group by ID")
	}
	if !grp.SupervisorID.Valid || grp.SupervisorID.String != claims.Subject {
		return errHttpNotFound
	}

	if err := api.deps.MarksSvc.Upsert(ctx.Request().Context(), data); err != nil {
		switch errors.Cause(err) {
		case marks.ErrInvalidReview:
			return echo.NewHTTPError(http.StatusBadRequest, marks.ErrInvalidReview.Error())
		case marks.ErrNotFound:
			return errHttpNotFound
		default:
			return errors.Wrap(err, "upserting mark")
		}
	}

	return ctx.JSON(http.StatusOK, SuccessResponse{Msg: "Marks saved successfully."})
}

func (api *supervisorApi) updatePreferences(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data supervisor.UpdatePreference
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePreference")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	if err := api.deps.SupervisorSvc.UpdateMaxGroups(ctx.Request().Context(), claims.Subject, data); err != nil {
		if errors.Cause(err) == supervisor.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating preferences")
	}

	load, err := api.deps.SupervisorSvc.GetLoad(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "finding supervisor load")
	}
	return ctx.JSON(http.StatusOK, load)
}

type (
	LoginResponse struct {
		Token string `json:"token"`
	}

	SuccessResponse struct {
		Msg string `json:"msg"`
	}
)
