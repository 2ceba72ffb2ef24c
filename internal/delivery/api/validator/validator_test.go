package validator

import (
	"testing"

	domainerrors "taskboard/internal/domain/errors"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Status   string `json:"status" validate:"omitempty,oneof=todo done"`
}

func TestValidate(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		input   signup
		wantMsg string
	}{
		{name: "valid", input: signup{Name: "Ada", Email: "ada@example.com", Password: "longenough"}},
		{name: "missing name", input: signup{Email: "ada@example.com", Password: "longenough"}, wantMsg: "name is required"},
		{name: "bad email", input: signup{Name: "Ada", Email: "nope", Password: "longenough"}, wantMsg: "email must be a valid email address"},
		{name: "short password", input: signup{Name: "Ada", Email: "ada@example.com", Password: "short"}, wantMsg: "password must be at least 8 characters"},
		{name: "bad enum", input: signup{Name: "Ada", Email: "ada@example.com", Password: "longenough", Status: "x"}, wantMsg: "status must be one of [todo done]"},
		{name: "first violation wins", input: signup{}, wantMsg: "name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.input)
			if tt.wantMsg == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))

			var appErr domainerrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.wantMsg, appErr.Message())
			assert.Equal(t, 400, appErr.HTTPCode())
		})
	}
}

func TestValidate_NameLimit(t *testing.T) {
	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}

	err := New().Validate(&signup{Name: string(long), Email: "ada@example.com", Password: "longenough"})
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "name must be at most 100 characters", appErr.Message())
}
