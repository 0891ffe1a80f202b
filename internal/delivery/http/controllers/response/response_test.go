package response

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"LearnForge/internal/app_errors"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{app_errors.Invalid("title", "is required"), http.StatusBadRequest, CodeValidation},
		{fmt.Errorf("get course: %w", app_errors.ErrCourseNotFound), http.StatusNotFound, CodeNotFound},
		{app_errors.ErrContentNotFound, http.StatusNotFound, CodeNotFound},
		{app_errors.ErrEnrollmentNotFound, http.StatusNotFound, CodeNotFound},
		{app_errors.ErrFileSize, http.StatusRequestEntityTooLarge, CodeUpload},
		{app_errors.ErrUnsupportedMedia, http.StatusUnsupportedMediaType, CodeUpload},
		{app_errors.ErrEmptyFile, http.StatusBadRequest, CodeUpload},
		{app_errors.ErrForbidden, http.StatusForbidden, CodeForbidden},
		{app_errors.ErrTokenExpired, http.StatusUnauthorized, CodeUnauthorized},
		{fmt.Errorf("load: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, CodeTimeout},
		{errors.New("connection reset"), http.StatusInternalServerError, CodeInternal},
	}
	for _, tc := range cases {
		status, code := Classify(tc.err)
		if status != tc.status || code != tc.code {
			t.Fatalf("%v: got %d/%s want %d/%s", tc.err, status, code, tc.status, tc.code)
		}
	}
}
