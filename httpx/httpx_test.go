package httpx

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/flavourbook-go/apperror"
)

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	type payload struct {
		EmailAddress string `json:"email" validate:"required,email"`
		Count        int    `json:"count" validate:"gte=0"`
	}

	err := ValidateStruct(payload{EmailAddress: "not-an-email", Count: -1})
	require.Error(t, err)

	appErr, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"email", "count"}, appErr.Fields)

	assert.NoError(t, ValidateStruct(payload{EmailAddress: "a@b.com"}))
}

func TestDecodeJSONMalformedBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader("{not json"))

	var dst struct{}
	err := DecodeJSON(req, &dst)
	require.Error(t, err)
	assert.True(t, apperror.IsBadRequestError(err))
}

func TestDecodeJSONIgnoresUnknownKeys(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"x","user":42}`))

	var dst struct {
		Name string `json:"name"`
	}
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "x", dst.Name)
}

func TestWriteErrorWrapsUnknownErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest("GET", "/", nil), assert.AnError)
	assert.Equal(t, 500, rec.Code)
	assert.Contains(t, rec.Body.String(), "unexpected error")
	// The underlying error text never reaches the client.
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}

func TestWriteErrorMapsAppErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest("GET", "/", nil), apperror.NewNotFoundError("flavour not found", nil))
	assert.Equal(t, 404, rec.Code)
	assert.JSONEq(t, `{"error":"flavour not found"}`, rec.Body.String())
}
