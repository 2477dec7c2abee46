package httphandler_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/threads/internal/application/appcore"
	httphandler "github.com/lllypuk/threads/internal/handler/http"
)

func TestRequestValidator(t *testing.T) {
	v := httphandler.NewRequestValidator()

	tests := []struct {
		name    string
		req     any
		field   string
		message string
	}{
		{
			name:    "required uses json name",
			req:     &httphandler.CreateThreadRequest{AuthorID: "6f1c2a8e-1d3b-4b7a-9a55-0d5c3c1f2e10"},
			field:   "text",
			message: "is required",
		},
		{
			name:    "uuid",
			req:     &httphandler.AddCommentRequest{Text: "hi", AuthorID: "abc"},
			field:   "author_id",
			message: "must be a valid UUID",
		},
		{
			name:    "max length",
			req:     &httphandler.UpdateUserRequest{Username: string(make([]byte, 51))},
			field:   "username",
			message: "must be at most 50 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, appcore.ErrValidationFailed)

			var valErr *appcore.ValidationError
			require.True(t, errors.As(err, &valErr))
			assert.Equal(t, tt.field, valErr.Field)
			assert.Equal(t, tt.message, valErr.Message)
		})
	}

	assert.NoError(t, v.Validate(&httphandler.UpdateUserRequest{Username: "alice"}))
}
