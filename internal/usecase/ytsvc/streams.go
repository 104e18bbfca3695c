package ytsvc

import (
	"strings"

	"github.com/kkdai/youtube/v2"
)

// pickVideo выбирает прогрессивный mp4 (видео и звук в одном потоке) с наибольшим разрешением.
func pickVideo(formats youtube.FormatList) *youtube.Format {
	var best *youtube.Format
	for i := range formats {
		f := &formats[i]
		if !strings.HasPrefix(f.MimeType, "video/mp4") || f.AudioChannels == 0 {
			continue
		}
		if best == nil || f.Height > best.Height || (f.Height == best.Height && f.Bitrate > best.Bitrate) {
			best = f
		}
	}
	return best
}

// pickAudio предпочитает поток в mp3-контейнере, иначе берёт аудиопоток с наибольшим битрейтом.
func pickAudio(formats youtube.FormatList) *youtube.Format {
	var mp3, best *youtube.Format
	for i := range formats {
		f := &formats[i]
		if !strings.HasPrefix(f.MimeType, "audio/") {
			continue
		}
		if mp3 == nil && (strings.HasPrefix(f.MimeType, "audio/mp3") || strings.HasPrefix(f.MimeType, "audio/mpeg")) {
			mp3 = f
		}
		if best == nil || f.Bitrate > best.Bitrate {
			best = f
		}
	}
	if mp3 != nil {
		return mp3
	}
	return best
}
