package models

import "errors"

// Ошибки входных данных: тексты уходят клиенту как есть.
var (
	ErrNoImage    = errors.New("No image uploaded!")
	ErrNoAudio    = errors.New("No audio file uploaded!")
	ErrNoFormat   = errors.New("No format selected!")
	ErrNoInput    = errors.New("No valid image provided")
	ErrTooLarge   = errors.New("upload too large")
	ErrNoURL      = errors.New("Enter a YouTube video URL.")
	ErrInvalidURL = errors.New("Enter a valid YouTube video URL!")
	ErrBadAction  = errors.New("Choose either video or audio.")
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrUpstream          = errors.New("Error processing request")
	ErrBusy              = errors.New("server busy")
	ErrMissingStem       = errors.New("missing stem")
)
