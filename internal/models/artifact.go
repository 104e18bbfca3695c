package models

// Artifact: результат обработки, который отдаётся клиенту и сразу забывается.
// Заполнено ровно одно из полей Body или Path.
type Artifact struct {
	Name     string
	MimeType string
	Body     []byte
	Path     string
	Size     int64
}

// Upload описывает файл из multipart-формы, сохранённый в рабочую директорию запроса.
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Path        string
	Size        int64
}

// Stem: один выделенный трек разделения.
type Stem struct {
	Name string
	Path string
}

// StemNames фиксированный набор и порядок треков htdemucs.
var StemNames = []string{"vocals", "drums", "bass", "other"}
