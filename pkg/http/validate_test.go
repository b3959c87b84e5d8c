package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Game  string `param:"game" validate:"required"`
	Count int    `json:"count" default:"1" validate:"min=1,max=100"`
	Mode  string `json:"mode" default:"dynamic" validate:"oneof=dynamic frequency model"`
}

func newContext(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/generate/lotto649", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("game")
	c.SetParamValues("lotto649")
	return c, rec
}

func TestReadAndValidateRequestAppliesDefaults(t *testing.T) {
	c, _ := newContext(`{}`)
	req := &sampleRequest{}
	require.Nil(t, ReadAndValidateRequest(c, req))
	assert.Equal(t, "lotto649", req.Game)
	assert.Equal(t, 1, req.Count)
	assert.Equal(t, "dynamic", req.Mode)
}

func TestReadAndValidateRequestReportsJSONNames(t *testing.T) {
	c, _ := newContext(`{"count": 500, "mode": "lucky"}`)
	verr := ReadAndValidateRequest(c, &sampleRequest{})
	require.NotNil(t, verr)

	errs, ok := verr.([]ValidationError)
	require.True(t, ok)
	require.Len(t, errs, 2)
	assert.Equal(t, "count", errs[0].Field)
	assert.Equal(t, "ERR_MAX", errs[0].Code)
	assert.Equal(t, "count must be at most 100", errs[0].Message)
	assert.Equal(t, "mode", errs[1].Field)
	assert.Equal(t, []string{"dynamic", "frequency", "model"}, errs[1].Params["options"])
}

func TestReadAndValidateRequestMalformedBody(t *testing.T) {
	c, _ := newContext(`{"count":`)
	verr := ReadAndValidateRequest(c, &sampleRequest{})
	errs, ok := verr.([]ValidationError)
	require.True(t, ok)
	assert.Equal(t, "ERR_UNKNOWN", errs[0].Code)
}

func TestAppErrorResponseUsesStatus(t *testing.T) {
	c, rec := newContext(``)
	err := UnprocessableError("not enough history").WithError(errors.New("9 draws"))
	require.NoError(t, AppErrorResponse(c, err))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_UNPROCESSABLE")

	c, rec = newContext(``)
	require.NoError(t, AppErrorResponse(c, errors.New("plain")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
