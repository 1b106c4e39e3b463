package errorbank

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestKindMappings(t *testing.T) {
	tests := []struct {
		err        *AppError
		wantKind   Kind
		wantStatus int
		wantCode   codes.Code
	}{
		{BadRequest("bad"), KindBadRequest, http.StatusBadRequest, codes.InvalidArgument},
		{Forbidden("nope"), KindForbidden, http.StatusForbidden, codes.PermissionDenied},
		{Conflict("clash"), KindConflict, http.StatusConflict, codes.AlreadyExists},
		{NotFound("gone"), KindNotFound, http.StatusNotFound, codes.NotFound},
		{Unprocessable("invalid"), KindUnprocessableEntity, http.StatusUnprocessableEntity, codes.FailedPrecondition},
		{Internal("boom"), KindInternal, http.StatusInternalServerError, codes.Internal},
	}
	for _, tt := range tests {
		t.Run(string(tt.wantKind), func(t *testing.T) {
			assert.Equal(t, tt.wantKind, tt.err.Kind())
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode())
			assert.Equal(t, tt.wantCode, tt.err.GRPCCode())
		})
	}
}

func TestWithCauseUnwraps(t *testing.T) {
	cause := errors.New("root")
	err := Internal("wrapped", WithCause(cause))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "root")
}

func TestFrom(t *testing.T) {
	appErr := NotFound("missing")
	assert.Same(t, appErr, From(appErr))

	wrapped := From(errors.New("plain"))
	require.NotNil(t, wrapped)
	assert.Equal(t, KindInternal, wrapped.Kind())

	assert.Nil(t, From(nil))
}

func TestWithDetails(t *testing.T) {
	err := BadRequest("bad", WithDetail("field", "quantity"), WithDetails(map[string]any{"min": 1}))
	assert.Equal(t, "quantity", err.Details()["field"])
	assert.Equal(t, 1, err.Details()["min"])
}
