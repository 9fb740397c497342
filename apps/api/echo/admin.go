package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kundi/core"
	"github.com/trezcool/kundi/core/assign"
	"github.com/trezcool/kundi/core/group"
	"github.com/trezcool/kundi/core/supervisor"
)

// adminApi serves the coordinator panel. The panel runs on a trusted
// network segment and carries no supervisor identity of its own.
type adminApi struct {
	deps ServerDeps
}

func registerAdminAPI(g *echo.Group, deps ServerDeps) {
	api := adminApi{deps: deps}

	ag := g.Group("/admin")

	ag.GET("/supervisors", api.querySupervisors)
	ag.POST("/supervisors/create", api.createSupervisor)
	ag.GET("/groups", api.queryGroups)
	ag.PUT("/groups/:id/assign", api.assignGroup)
	ag.PUT("/groups/:id/unassign", api.unassignGroup)
	ag.POST("/assign-groups", api.autoAssign)
}

// Handlers

func (api *adminApi) querySupervisors(ctx echo.Context) error {
	loads, err := api.deps.SupervisorSvc.QueryLoads(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying supervisor loads")
	}
	if loads == nil {
		loads = []supervisor.Load{}
	}
	return ctx.JSON(http.StatusOK, loads)
}

func (api *adminApi) createSupervisor(ctx echo.Context) error {
	var data supervisor.NewSupervisor
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSupervisor")
	}
	if err := data.Validate(api.deps.Validate, nil /* skip uniqueness; create is idempotent */); err != nil {
		return err
	}

	if err := api.deps.SupervisorSvc.CreateIfAbsent(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "creating supervisor")
	}
	return ctx.JSON(http.StatusCreated, SuccessResponse{Msg: "Supervisor created."})
}

func (api *adminApi) queryGroups(ctx echo.Context) error {
	summaries, err := api.deps.GroupSvc.QuerySummaries(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying group summaries")
	}
	if summaries == nil {
		summaries = []group.Summary{}
	}
	return ctx.JSON(http.StatusOK, summaries)
}

func (api *adminApi) assignGroup(ctx echo.Context) error {
	var data AssignGroupRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignGroupRequest")
	}
	if data.SupervisorID == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "supervisor_id", Error: "supervisor_id is required"})
	}

	err := api.deps.AssignSvc.ManualAssign(ctx.Request().Context(), ctx.Param("id"), core.CleanString(data.SupervisorID, true /* lower */))
	if err != nil {
		switch cause := errors.Cause(err).(type) {
		case *assign.CapacityError:
			return cause
		default:
			if cause == supervisor.ErrNotFound || cause == group.ErrNotFound {
				return errHttpNotFound
			}
			return errors.Wrap(err, "assigning group")
		}
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Msg: "Group assigned successfully."})
}

func (api *adminApi) unassignGroup(ctx echo.Context) error {
	if err := api.deps.AssignSvc.Unassign(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == group.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "unassigning group")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Msg: "Group unassigned successfully."})
}

func (api *adminApi) autoAssign(ctx echo.Context) error {
	result, err := api.deps.AssignSvc.AutoAssign(ctx.Request().Context())
	if err != nil {
		switch errors.Cause(err) {
		case assign.ErrNoSupervisors, assign.ErrCapacityExhausted:
			return echo.NewHTTPError(http.StatusBadRequest, errors.Cause(err).Error())
		default:
			return errors.Wrap(err, "auto-assigning groups")
		}
	}
	return ctx.JSON(http.StatusOK, result)
}

type AssignGroupRequest struct {
	SupervisorID string `json:"supervisor_id"`
}
