package group

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kundi/core"
)

var (
	memberCountTag  = "membercount"
	memberCountText = "a group must have exactly 5 members"

	uniqueRegNoTag  = "uniqueregno"
	uniqueRegNoText = "a student cannot appear twice in the same group"
)

// InitValidators registers the group validators & translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(newGroupStructValidation, NewGroup{})
	core.RegisterCustomTranslation(validate, translator, "len", memberCountText)
	core.RegisterCustomTranslation(validate, translator, uniqueRegNoTag, uniqueRegNoText)
}

// newGroupStructValidation checks that no registration number appears twice
// within the same NewGroup; cross-group membership is checked against storage.
func newGroupStructValidation(sl validator.StructLevel) {
	ng, ok := sl.Current().Interface().(NewGroup)
	if !ok {
		return
	}
	seen := make(map[string]struct{}, len(ng.Members))
	for _, m := range ng.Members {
		if _, dup := seen[m.RegNo]; dup {
			sl.ReportError(ng.Members, "members", "Members", uniqueRegNoTag, "")
			return
		}
		seen[m.RegNo] = struct{}{}
	}
}
