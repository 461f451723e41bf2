package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmanager/pkg/apperr"
)

func bindBody(t *testing.T, body string, req request) error {
	t.Helper()
	registerValidators()
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return bindJSON(c, req)
}

func TestBindJSONUsesJSONFieldNames(t *testing.T) {
	var req createTaskRequest
	err := bindBody(t, `{"title":"x","due_date":"2025-3-10"}`, &req)

	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, ae.Kind)
	assert.Equal(t, []apperr.FieldError{{Field: "due_date", Message: msgDueDate}}, ae.Fields)
}

func TestBindJSONKeepsFieldOrder(t *testing.T) {
	var req registerRequest
	err := bindBody(t, `{"password":"1"}`, &req)

	ae, ok := apperr.As(err)
	require.True(t, ok)
	require.Len(t, ae.Fields, 3)
	assert.Equal(t, "name", ae.Fields[0].Field)
	assert.Equal(t, "email", ae.Fields[1].Field)
	assert.Equal(t, "password", ae.Fields[2].Field)
}

func TestBindJSONEmptyStatusIsGiven(t *testing.T) {
	var req createTaskRequest
	err := bindBody(t, `{"title":"x","due_date":"2025-03-10","status":""}`, &req)

	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, []apperr.FieldError{{Field: "status", Message: "Invalid status"}}, ae.Fields)

	req = createTaskRequest{}
	require.NoError(t, bindBody(t, `{"title":"x","due_date":"2025-03-10"}`, &req))
	assert.Nil(t, req.Status)
}

func TestBindJSONEmptyBody(t *testing.T) {
	var req updateTaskRequest
	require.NoError(t, bindBody(t, "", &req))
	assert.Nil(t, req.Title)
	assert.Nil(t, req.DueDate)
}

func TestBindJSONNullLeavesFieldUnset(t *testing.T) {
	var req updateTaskRequest
	require.NoError(t, bindBody(t, `{"title":null,"status":"Completed"}`, &req))
	assert.Nil(t, req.Title)
	require.NotNil(t, req.Status)
	assert.Equal(t, "Completed", *req.Status)
}

func TestBindJSONMalformed(t *testing.T) {
	var req loginRequest
	err := bindBody(t, `{"email":`, &req)

	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, MsgInvalidBody, ae.Message)
	assert.Empty(t, ae.Fields)
}

func TestUpdatePatch(t *testing.T) {
	due := "2025-04-01"
	title := "new"
	p, err := updateTaskRequest{Title: &title, DueDate: &due}.patch()
	require.NoError(t, err)
	require.NotNil(t, p.DueDate)
	assert.Equal(t, due, p.DueDate.String())
	assert.Equal(t, "new", *p.Title)
	assert.Nil(t, p.Status)
}
