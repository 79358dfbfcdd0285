package response

import (
	"errors"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/restaurant-radio/internal/lib/callerr"
)

type checkoutRequest struct {
	PriceID string `json:"price_id" validate:"required_without=Plan"`
	Mode    string `json:"mode" validate:"omitempty,oneof=payment subscription"`
	Plan    string `json:"plan" validate:"omitempty,oneof=monthly annual lifetime"`
}

func TestValidationError(t *testing.T) {
	err := validator.New().Struct(checkoutRequest{Mode: "setup"})
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))

	resp := ValidationError(verrs)
	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field PriceID is required when Plan is empty")
	assert.Contains(t, resp.Error, "field Mode must be one of [payment subscription]")
}

func TestCallError(t *testing.T) {
	resp := CallError(callerr.New(callerr.InvalidArgument, "No valid Stripe Customer found."))
	assert.Equal(t, ErrorResponse{Status: StatusError, Code: "invalid-argument", Error: "No valid Stripe Customer found."}, resp)

	resp = CallError(errors.New("db is down"))
	assert.Equal(t, ErrorResponse{Status: StatusError, Code: "internal", Error: "internal error"}, resp)
}
