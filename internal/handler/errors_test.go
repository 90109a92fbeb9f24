package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/enrollment-backend/internal/repository"
	"github.com/stemsi/enrollment-backend/internal/response"
	"github.com/stemsi/enrollment-backend/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		code   response.ErrCode
	}{
		{"validation", &validator.Error{Fields: map[string]string{"year": "bad"}}, http.StatusBadRequest, response.ErrValidation},
		{"student missing", fmt.Errorf("enroll: %w", repository.ErrStudentNotFound), http.StatusNotFound, response.ErrStudentNotFound},
		{"course missing", repository.ErrCourseNotFound, http.StatusNotFound, response.ErrCourseNotFound},
		{"not enrolled", repository.ErrEnrollmentNotFound, http.StatusNotFound, response.ErrNotEnrolled},
		{"email taken", repository.ErrEmailTaken, http.StatusConflict, response.ErrEmailTaken},
		{"already enrolled", repository.ErrAlreadyEnrolled, http.StatusConflict, response.ErrAlreadyEnrolled},
		{"no seats", fmt.Errorf("enroll: %w", repository.ErrCapacityExceeded), http.StatusConflict, response.ErrCapacityExceeded},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, response.ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			failWithError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body response.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestParsePositive(t *testing.T) {
	id, err := parsePositive("12")
	require.NoError(t, err)
	assert.Equal(t, 12, id)

	for _, raw := range []string{"", "0", "-3", "1.5", "x"} {
		_, err := parsePositive(raw)
		assert.Error(t, err, raw)
	}
}
