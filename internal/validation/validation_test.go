package validation

import (
	"errors"
	"testing"

	"github.com/Baaaki/campus-market/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Name  string `json:"name" validate:"notblank,max=10"`
	Email string `json:"email" validate:"required,email,institutional"`
	Age   int    `form:"age" validate:"min=18"`
}

func TestFields_ReportsJSONNames(t *testing.T) {
	v := New("correounivalle.edu.co")

	err := Fields(v.Struct(signup{Name: "   ", Email: "ana@gmail.com", Age: 3}))

	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Equal(t, map[string]string{
		"name":  "name is required",
		"email": "email must be an institutional email address",
		"age":   "age must be at least 18",
	}, verr.Fields)
}

func TestInstitutional_CaseInsensitive(t *testing.T) {
	v := New("@CorreoUnivalle.edu.co")

	assert.NoError(t, v.Struct(signup{Name: "Ana", Email: "Ana@correounivalle.EDU.co", Age: 20}))
}

func TestFields_PassesThroughOtherErrors(t *testing.T) {
	other := errors.New("boom")

	assert.Same(t, other, Fields(other))
	assert.NoError(t, Fields(nil))
}

func TestMessage_StringLength(t *testing.T) {
	v := New("correounivalle.edu.co")

	err := Fields(v.Struct(signup{Name: "a very long name", Email: "a@correounivalle.edu.co", Age: 20}))

	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "name must be at most 10 characters", verr.Fields["name"])
}
