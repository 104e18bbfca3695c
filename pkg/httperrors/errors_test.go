package httperrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sir_venger/media_lite/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"no image", models.ErrNoImage, http.StatusBadRequest},
		{"no format wrapped", fmt.Errorf("form: %w", models.ErrNoFormat), http.StatusBadRequest},
		{"too large", models.ErrTooLarge, http.StatusBadRequest},
		{"invalid url", models.ErrInvalidURL, http.StatusBadRequest},
		{"busy", models.ErrBusy, http.StatusServiceUnavailable},
		{"upstream", fmt.Errorf("%w: boom", models.ErrUpstream), http.StatusBadGateway},
		{"deadline", fmt.Errorf("ffmpeg: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"unsupported format", models.ErrUnsupportedFormat, http.StatusInternalServerError},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestWrite_PlainTextBody(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, fmt.Errorf("An error occurred: %w", errors.New("bad header")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), "An error occurred: bad header")
}

func TestWrite_InputErrorsHideCause(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, fmt.Errorf("%w: illegal base64 data at input byte 4", models.ErrNoInput))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No valid image provided\n", rec.Body.String())
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "server busy", Message(fmt.Errorf("%w: %v", models.ErrBusy, context.DeadlineExceeded)))
	assert.Equal(t, "Error processing request: gone", Message(fmt.Errorf("%w: gone", models.ErrUpstream)))
}
