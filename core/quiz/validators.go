package quiz

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mtihani/core"
)

var (
	choiceTag  = "choice"
	choiceText = "choice must be between 1 and 4"
)

func init() {
	_ = core.Validate.RegisterValidation(choiceTag, choiceValidation)
	core.RegisterCustomTranslation(choiceTag, choiceText)
}

// choiceValidation allows a 1-based choice index of a four-choice question.
func choiceValidation(fl validator.FieldLevel) bool {
	choice := fl.Field().Int()
	return choice >= 1 && choice <= 4
}
