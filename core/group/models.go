package group

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kundi/core"
)

// GroupSize is the number of students a project group must have, no more, no less.
const GroupSize = 5

type (
	Student struct {
		RegNo string  `json:"reg_no" db:"reg_no"`
		Name  string  `json:"name" db:"name"`
		CGPA  float64 `json:"cgpa" db:"cgpa"`
	}

	Group struct {
		ID           string      `json:"group_id" db:"group_id"`
		Name         string      `json:"group_name" db:"group_name"`
		SupervisorID null.String `json:"assigned_supervisor_id" db:"assigned_supervisor_id"`
		CreatedAt    time.Time   `json:"created_at" db:"created_at"` // UTC
	}

	// Summary is the admin view of a group: its assignment status and size.
	Summary struct {
		ID             string      `json:"group_id" db:"group_id"`
		Name           string      `json:"group_name" db:"group_name"`
		SupervisorID   null.String `json:"assigned_supervisor_id" db:"assigned_supervisor_id"`
		SupervisorName null.String `json:"supervisor_name" db:"supervisor_name"`
		MemberCount    int         `json:"member_count" db:"member_count"`
	}

	// MemberMarks is a group member along with their four review scores.
	MemberMarks struct {
		RegNo   string       `json:"reg_no" db:"reg_no"`
		Name    string       `json:"name" db:"name"`
		CGPA    float64      `json:"cgpa" db:"cgpa"`
		Review1 null.Float64 `json:"review1_marks" db:"review1_marks"`
		Review2 null.Float64 `json:"review2_marks" db:"review2_marks"`
		Review3 null.Float64 `json:"review3_marks" db:"review3_marks"`
		Review4 null.Float64 `json:"review4_marks" db:"review4_marks"`
	}

	// AssignedGroup is the supervisor dashboard view of one of their groups.
	AssignedGroup struct {
		ID      string        `json:"group_id"`
		Name    string        `json:"group_name"`
		Members []MemberMarks `json:"members"`
	}
)

// NewMember contains information needed to register one group member.
type NewMember struct {
	Name  string  `json:"name" validate:"required"`
	RegNo string  `json:"reg_no" validate:"required,alphanum_"`
	CGPA  float64 `json:"cgpa" validate:"gt=0,lte=10"`
}

// NewGroup contains information needed to register a new Group.
type NewGroup struct {
	GroupName string      `json:"group_name" validate:"required"`
	Members   []NewMember `json:"members" validate:"len=5,dive"`
}

func (ng *NewGroup) Validate(validate *validator.Validate) error {
	ng.GroupName = core.CleanString(ng.GroupName)
	for i := range ng.Members {
		ng.Members[i].Name = core.CleanString(ng.Members[i].Name)
		ng.Members[i].RegNo = core.CleanString(ng.Members[i].RegNo, true /* lower */)
	}
	return validate.Struct(ng)
}

// RegNos returns the registration numbers of all members, in order.
func (ng *NewGroup) RegNos() []string {
	regNos := make([]string, 0, len(ng.Members))
	for _, m := range ng.Members {
		regNos = append(regNos, m.RegNo)
	}
	return regNos
}
