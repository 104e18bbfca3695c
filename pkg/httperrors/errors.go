package httperrors

import (
	"context"
	"errors"
	"net/http"

	"github.com/sir_venger/media_lite/internal/models"
)

// public: ошибки, текст которых предназначен пользователю формы.
var public = []error{
	models.ErrNoImage,
	models.ErrNoAudio,
	models.ErrNoFormat,
	models.ErrNoInput,
	models.ErrTooLarge,
	models.ErrNoURL,
	models.ErrInvalidURL,
	models.ErrBadAction,
	models.ErrBusy,
}

// Status сопоставляет ошибку обработки с HTTP-статусом ответа.
func Status(err error) int {
	switch {
	case errors.Is(err, models.ErrNoImage),
		errors.Is(err, models.ErrNoAudio),
		errors.Is(err, models.ErrNoFormat),
		errors.Is(err, models.ErrNoInput),
		errors.Is(err, models.ErrTooLarge),
		errors.Is(err, models.ErrNoURL),
		errors.Is(err, models.ErrInvalidURL),
		errors.Is(err, models.ErrBadAction):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrBusy):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Message возвращает текст для клиента: для ошибок ввода это текст самой
// sentinel-ошибки без подробностей, для прочих полный текст цепочки.
func Message(err error) string {
	for _, p := range public {
		if errors.Is(err, p) {
			return p.Error()
		}
	}
	return err.Error()
}

// Write пишет ошибку plain-text телом с соответствующим статусом.
func Write(w http.ResponseWriter, err error) {
	http.Error(w, Message(err), Status(err))
}
