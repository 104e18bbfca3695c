package integration

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/kkdai/youtube/v2"

	"github.com/sir_venger/media_lite/internal/app/mediahttp"
	"github.com/sir_venger/media_lite/internal/config"
	"github.com/sir_venger/media_lite/internal/metrics"
	"github.com/sir_venger/media_lite/internal/models"
	"github.com/sir_venger/media_lite/internal/scratch"
	"github.com/sir_venger/media_lite/internal/toolexec/tooltest"
	"github.com/sir_venger/media_lite/internal/usecase/audiosvc"
	"github.com/sir_venger/media_lite/internal/usecase/imagesvc"
	"github.com/sir_venger/media_lite/internal/usecase/ytsvc"
)

// cdnResolver отдаёт метаданные ролика, а поток раздаёт через локальный HTTP-сервер.
type cdnResolver struct {
	video  *youtube.Video
	cdnURL string
}

func (c cdnResolver) GetVideoContext(context.Context, string) (*youtube.Video, error) {
	return c.video, nil
}

func (c cdnResolver) GetStreamURLContext(_ context.Context, _ *youtube.Video, f *youtube.Format) (string, error) {
	return c.cdnURL + "/itag/" + url.PathEscape(f.MimeType), nil
}

func (c cdnResolver) GetStreamContext(ctx context.Context, v *youtube.Video, f *youtube.Format) (io.ReadCloser, int64, error) {
	u, _ := c.GetStreamURLContext(ctx, v, f)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	return resp.Body, resp.ContentLength, nil
}

type stack struct {
	api     *httptest.Server
	runner  *tooltest.Runner
	scratch *scratch.Root
}

// newStack поднимает полный роутер поверх подменённых бинарников и локального "CDN".
func newStack(t *testing.T, mutate func(*config.Config)) *stack {
	t.Helper()

	cfg := config.Default()
	cfg.Scratch.Dir = t.TempDir()
	if mutate != nil {
		mutate(cfg)
	}

	root, err := scratch.NewRoot(cfg.Scratch.Dir)
	if err != nil {
		t.Fatal(err)
	}
	m := metrics.New()

	runner := tooltest.NewRunner().
		Handle(cfg.Tools.FFmpeg, tooltest.FFmpeg(tooltest.WAV())).
		Handle(cfg.Tools.Rembg, tooltest.Rembg()).
		Handle(cfg.Tools.Demucs, tooltest.Demucs(models.StemNames))

	cdn := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, "stream", fixedTime, bytes.NewReader(streamBytes))
	}))
	t.Cleanup(cdn.Close)

	h, _, err := mediahttp.New(cfg, mediahttp.Deps{
		Images: imagesvc.New(imagesvc.Deps{Runner: runner, Rembg: cfg.Tools.Rembg, Scratch: root, Metrics: m}),
		Audio: audiosvc.New(audiosvc.Deps{
			Runner:  runner,
			FFmpeg:  cfg.Tools.FFmpeg,
			Demucs:  cfg.Tools.Demucs,
			Model:   cfg.Demucs,
			Metrics: m,
		}),
		YouTube: ytsvc.New(ytsvc.Deps{
			Resolver:   cdnResolver{video: sampleVideo(), cdnURL: cdn.URL},
			Downloader: ytsvc.GotDownloader{Concurrency: uint(cfg.YouTube.Concurrency)},
			Metrics:    m,
		}),
		Scratch: root,
		Metrics: m,
	})
	if err != nil {
		t.Fatal(err)
	}

	api := httptest.NewServer(h)
	t.Cleanup(api.Close)
	return &stack{api: api, runner: runner, scratch: root}
}

func sampleVideo() *youtube.Video {
	return &youtube.Video{
		ID:    "dQw4w9WgXcQ",
		Title: "Sample / Clip",
		Formats: youtube.FormatList{
			{ItagNo: 18, MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, Height: 360, AudioChannels: 2},
			{ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, AudioChannels: 2, Bitrate: 128000},
		},
	}
}

type upload struct {
	field, filename string
	body            []byte
}

func multipartBody(fields map[string]string, files ...upload) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := fw.Write(f.body); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func postMultipart(t *testing.T, target string, fields map[string]string, files ...upload) *http.Response {
	t.Helper()
	body, contentType, err := multipartBody(fields, files...)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(target, contentType, body)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func postForm(t *testing.T, target string, values url.Values) *http.Response {
	t.Helper()
	resp, err := http.Post(target, "application/x-www-form-urlencoded", strings.NewReader(values.Encode()))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

// assertEmptyScratch ждёт, пока обработчик удалит рабочую директорию: это
// происходит после отправки последнего байта ответа.
func assertEmptyScratch(t *testing.T, root *scratch.Root) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		entries, err := os.ReadDir(root.Dir())
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) == 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("scratch not cleaned: %d entries left", len(entries))
		}
		time.Sleep(10 * time.Millisecond)
	}
}
