package ytsvc

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/sir_venger/media_lite/internal/models"
)

// Action: что именно скачать из ролика.
type Action string

const (
	ActionVideo Action = "video"
	ActionAudio Action = "audio"
)

var videoURL = regexp.MustCompile(`^(https?://)?(www\.)?(youtube|youtu|youtube-nocookie)\.(com|be)/(watch\?v=|embed/|v/|.+\?v=)?([^&=%?]{11})`)

// Validate проверяет поля формы в том порядке, в каком о них сообщает страница.
func Validate(rawURL, action string) (Action, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", models.ErrNoURL
	}
	if !videoURL.MatchString(rawURL) {
		return "", models.ErrInvalidURL
	}
	switch a := Action(strings.ToLower(strings.TrimSpace(action))); a {
	case ActionVideo, ActionAudio:
		return a, nil
	default:
		return "", models.ErrBadAction
	}
}

const maxTitleRunes = 150

// SafeTitle делает из названия ролика имя файла для Content-Disposition.
func SafeTitle(title string) string {
	var b strings.Builder
	n := 0
	for _, r := range title {
		if n >= maxTitleRunes {
			break
		}
		switch {
		case unicode.IsControl(r), strings.ContainsRune(`<>:"/\|?*`, r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
		n++
	}

	out := strings.Trim(b.String(), " .")
	if out == "" {
		return "video"
	}
	return out
}
