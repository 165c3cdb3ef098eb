package verification

import (
	"net/url"
	"strings"

	"tickethub/pkg/validation"
)

// CardField is the form field name, matching the remote's wire name.
const CardField = "ghana_card"

// Form is the card verification form.
type Form struct {
	CardNumber string `validate:"required,notblank,min=8,max=32" message:"Please enter a valid Ghana Card number."`
}

func (f *Form) Bind(values url.Values) {
	f.CardNumber = values.Get(CardField)
}

func (f *Form) Normalize() {
	f.CardNumber = strings.TrimSpace(f.CardNumber)
}

func (f *Form) Validate() error {
	return validation.Validate(f)
}

// NewForm returns a normalized form for cardNumber.
func NewForm(cardNumber string) Form {
	f := Form{CardNumber: cardNumber}
	f.Normalize()
	return f
}
