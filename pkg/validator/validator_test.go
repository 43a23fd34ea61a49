package validator

import (
	"errors"
	"testing"

	"go-price-pilot/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestValidateAcceptsCompleteInput(t *testing.T) {
	in := model.ProductInput{
		Name:     "Lámpara",
		Category: "Hogar",
		Cost:     10,
		Shipping: ptr(2.5),
		Links:    []model.ProductLink{{Name: "Proveedor", URL: "https://example.com/item/1"}},
	}
	assert.NoError(t, Validate(&in))
}

func TestValidateRejectsBlankNameAndCategory(t *testing.T) {
	err := Validate(&model.ProductInput{Name: "   ", Category: ""})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	fields := map[string]string{}
	for _, e := range verr.Errors {
		fields[e.FailedField] = e.Tag
	}
	assert.Equal(t, "notblank", fields["ProductInput.Name"])
	assert.Equal(t, "notblank", fields["ProductInput.Category"])
}

func TestValidateRejectsNegativeNumbers(t *testing.T) {
	cases := map[string]model.ProductInput{
		"ProductInput.Cost":                {Name: "a", Category: "b", Cost: -1},
		"ProductInput.Shipping":            {Name: "a", Category: "b", Shipping: ptr(-0.01)},
		"ProductInput.TaxRate":             {Name: "a", Category: "b", TaxRate: ptr(-21)},
		"ProductInput.ProfitMarginPercent": {Name: "a", Category: "b", ProfitMarginPercent: ptr(-5)},
		"ProductInput.LaborCost":           {Name: "a", Category: "b", LaborCost: ptr(-5)},
	}
	for field, in := range cases {
		t.Run(field, func(t *testing.T) {
			errs := ValidateStruct(&in)
			require.Len(t, errs, 1)
			assert.Equal(t, field, errs[0].FailedField)
			assert.Equal(t, "gte", errs[0].Tag)
		})
	}
}

func TestValidateRejectsMalformedLinkURL(t *testing.T) {
	in := model.ProductInput{
		Name:     "a",
		Category: "b",
		Links:    []model.ProductLink{{Name: "ok", URL: "https://example.com"}, {Name: "bad", URL: "not a url"}},
	}
	errs := ValidateStruct(&in)
	require.Len(t, errs, 1)
	assert.Equal(t, "ProductInput.Links[1].URL", errs[0].FailedField)
	assert.Equal(t, "url", errs[0].Tag)
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewError("ProductInput.LaborCost", "unused_margin")
	assert.Equal(t, "Validation failed: Field 'ProductInput.LaborCost' failed on tag 'unused_margin'", err.Error())
}
