package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name      string    `json:"name" validate:"required,max=5"`
	Weight    *float64  `json:"weight" validate:"required"`
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
}

func TestValidateStructReportsJSONNames(t *testing.T) {
	errs := ValidateStruct(&sample{Name: "too-long-name"})
	require.Len(t, errs, 3)

	msgs := FieldMessages(errs)
	assert.Equal(t, "Ensure this value has at most 5 characters.", msgs["name"])
	assert.Equal(t, "This field is required.", msgs["weight"])
	assert.Equal(t, "This field is required.", msgs["product_id"])
	assert.Equal(t, "sample.Name", errs[0].FailedField)
}

func TestValidateStructZeroWeightIsPresent(t *testing.T) {
	zero := 0.0
	errs := ValidateStruct(&sample{Name: "ok", Weight: &zero, ProductID: uuid.New()})
	assert.Empty(t, errs)
}
