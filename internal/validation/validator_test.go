package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/bookclusters/internal/errors"
	"github.com/listenupapp/bookclusters/internal/validation"
)

type settings struct {
	Clusters int     `env:"CLUSTER_COUNT" validate:"gte=1"`
	Folds    int     `env:"CV_FOLDS" validate:"gte=2"`
	Level    string  `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	Tol      float64 `env:"CLUSTER_TOLERANCE" validate:"gt=0"`
	Path     string  `validate:"required"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	err := v.Validate(settings{Clusters: 5, Folds: 5, Level: "info", Tol: 1e-4, Path: "books.json"})
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		in        settings
		wantField string
		wantMsg   string
	}{
		{
			name:      "cluster count below one",
			in:        settings{Clusters: 0, Folds: 5, Level: "info", Tol: 1, Path: "x"},
			wantField: "CLUSTER_COUNT",
			wantMsg:   "must be greater than or equal to 1",
		},
		{
			name:      "single fold",
			in:        settings{Clusters: 1, Folds: 1, Level: "info", Tol: 1, Path: "x"},
			wantField: "CV_FOLDS",
			wantMsg:   "must be greater than or equal to 2",
		},
		{
			name:      "unknown level",
			in:        settings{Clusters: 1, Folds: 2, Level: "trace", Tol: 1, Path: "x"},
			wantField: "LOG_LEVEL",
			wantMsg:   "must be one of: debug info warn error",
		},
		{
			name:      "field without env tag uses Go name",
			in:        settings{Clusters: 1, Folds: 2, Level: "info", Tol: 1},
			wantField: "Path",
			wantMsg:   "is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrValidation))

			var domainErr *errors.Error
			require.True(t, errors.As(err, &domainErr))
			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField])
		})
	}
}
