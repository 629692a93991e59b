package validate_test

import (
	"testing"

	"github.com/programme-lv/autograde/srvcerror"
	"github.com/programme-lv/autograde/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type params struct {
	Title string `json:"title" validate:"notblank,max=10"`
	Email string `json:"email" validate:"required,email"`
	Days  int    `json:"days" validate:"gte=0"`
}

func TestStruct(t *testing.T) {
	require.NoError(t, validate.Struct(params{Title: "hw1", Email: "a@b.lv"}))

	err := validate.Struct(params{Title: "   ", Email: "nope", Days: -1})
	require.Error(t, err)
	assert.True(t, srvcerror.HasCode(err, validate.ErrCodeValidationFailed))
	assert.Contains(t, err.Error(), "title cannot be blank")
	assert.Contains(t, err.Error(), "email")
	assert.Contains(t, err.Error(), "days")
}
