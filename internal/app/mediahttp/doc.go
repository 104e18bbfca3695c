// Package mediahttp реализует HTTP-интерфейс медиа-сервиса. Каждый маршрут отвечает
// формой на GET и обрабатывает загрузку на POST:
//   - /convert: перекодирование изображения в другой формат.
//   - /rmbg: удаление фона (файл или base64 data URI), ответ PNG.
//   - /yt2mp4: скачивание ролика (mp4) или звуковой дорожки (mp3) с YouTube.
//   - /audio_converter: перекодирование аудио через ffmpeg.
//   - /demucs: разделение трека на четыре стема, ответ zip-архивом.
//
// Служебные эндпоинты: GET /health, POST /admin/gc, GET /metrics.
package mediahttp
