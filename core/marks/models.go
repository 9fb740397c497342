package marks

import (
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kundi/core"
)

// reviewColumns is the only mapping from a review number to its storage
// column. Columns are never built from request input.
var reviewColumns = map[int]string{
	1: "review1_marks",
	2: "review2_marks",
	3: "review3_marks",
	4: "review4_marks",
}

// ReviewColumn resolves a review number to its marks column; ok is false for
// anything outside {1,2,3,4}.
func ReviewColumn(review int) (string, bool) {
	col, ok := reviewColumns[review]
	return col, ok
}

// Mark holds one student's four review scores within their group.
type Mark struct {
	StudentRegNo string       `json:"student_reg_no" db:"student_reg_no"`
	GroupID      string       `json:"group_id" db:"group_id"`
	Review1      null.Float64 `json:"review1_marks" db:"review1_marks"`
	Review2      null.Float64 `json:"review2_marks" db:"review2_marks"`
	Review3      null.Float64 `json:"review3_marks" db:"review3_marks"`
	Review4      null.Float64 `json:"review4_marks" db:"review4_marks"`
}

// setReview sets the addressed review score; review must be in {1,2,3,4}.
func (m *Mark) setReview(review int, score null.Float64) {
	switch review {
	case 1:
		m.Review1 = score
	case 2:
		m.Review2 = score
	case 3:
		m.Review3 = score
	case 4:
		m.Review4 = score
	}
}

// UpsertMark contains information needed to record one review score.
// A null Marks value clears a previously recorded score.
type UpsertMark struct {
	StudentRegNo string       `json:"student_reg_no" validate:"required"`
	GroupID      string       `json:"group_id" validate:"required"`
	ReviewNumber int          `json:"review_number" validate:"required,min=1,max=4"`
	Marks        null.Float64 `json:"marks" validate:"-"`
}

func (um *UpsertMark) Validate(validate *validator.Validate) error {
	um.StudentRegNo = core.CleanString(um.StudentRegNo, true /* lower */)
	um.GroupID = core.CleanString(um.GroupID)
	return validate.Struct(um)
}
