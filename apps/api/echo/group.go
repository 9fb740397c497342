package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kundi/core/group"
)

type groupApi struct {
	svc      *group.Service
	validate *validator.Validate
}

func registerGroupAPI(g *echo.Group, svc *group.Service, validate *validator.Validate) {
	api := groupApi{
		svc:      svc,
		validate: validate,
	}

	gg := g.Group("/groups")
	gg.POST("/register", api.register)
}

// Handlers

func (api *groupApi) register(ctx echo.Context) error {
	var data group.NewGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGroup")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	grp, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		switch cause := errors.Cause(err).(type) {
		case *group.TakenError:
			return cause
		default:
			return errors.Wrap(err, "registering group")
		}
	}

	return ctx.JSON(http.StatusCreated, RegisterGroupResponse{
		Msg:     "Group registered successfully.",
		GroupID: grp.ID,
	})
}

type RegisterGroupResponse struct {
	Msg     string `json:"msg"`
	GroupID string `json:"group_id"`
}
