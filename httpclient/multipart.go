package httpclient

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"sort"

	"github.com/kbukum/audioscribe/errors"
)

// MultipartBody represents a multipart/form-data request body.
type MultipartBody struct {
	// Fields are simple key-value form fields, written in key order.
	Fields map[string]string
	// Files are file upload fields.
	Files []FileField
}

// FileField is a file to upload. Path is opened and streamed; Data is
// used when Path is empty.
type FileField struct {
	FieldName   string
	FileName    string
	ContentType string
	Path        string
	Data        []byte
}

// open checks every Path up front so a missing audio file is reported as
// AUDIO_NOT_FOUND before any connection is made.
func (m *MultipartBody) open() ([]io.ReadCloser, error) {
	readers := make([]io.ReadCloser, len(m.Files))
	for i, f := range m.Files {
		if f.Path == "" {
			readers[i] = io.NopCloser(bytes.NewReader(f.Data))
			continue
		}
		file, err := os.Open(f.Path)
		if err != nil {
			closeAll(readers[:i])
			return nil, errors.AudioNotFound(f.Path, err)
		}
		readers[i] = file
	}
	return readers, nil
}

// encode streams the multipart body through a pipe so large audio files
// are never held in memory.
func (m *MultipartBody) encode() (io.ReadCloser, string, error) {
	readers, err := m.open()
	if err != nil {
		return nil, "", err
	}

	pr, pw := io.Pipe()
	w := multipart.NewWriter(pw)

	go func() {
		defer closeAll(readers)
		pw.CloseWithError(m.write(w, readers))
	}()

	return pr, w.FormDataContentType(), nil
}

func (m *MultipartBody) write(w *multipart.Writer, readers []io.ReadCloser) error {
	keys := make([]string, 0, len(m.Fields))
	for k := range m.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, m.Fields[k]); err != nil {
			return err
		}
	}

	for i, f := range m.Files {
		name := f.FileName
		if name == "" && f.Path != "" {
			name = filepath.Base(f.Path)
		}

		var part io.Writer
		var err error
		if f.ContentType != "" {
			header := make(textproto.MIMEHeader)
			header.Set("Content-Disposition",
				`form-data; name="`+escapeQuotes(f.FieldName)+`"; filename="`+escapeQuotes(name)+`"`)
			header.Set("Content-Type", f.ContentType)
			part, err = w.CreatePart(header)
		} else {
			part, err = w.CreateFormFile(f.FieldName, name)
		}
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, readers[i]); err != nil {
			return err
		}
	}
	return w.Close()
}

func closeAll(rs []io.ReadCloser) {
	for _, r := range rs {
		if r != nil {
			_ = r.Close()
		}
	}
}

func escapeQuotes(s string) string {
	var buf bytes.Buffer
	for _, b := range []byte(s) {
		if b == '"' || b == '\\' {
			buf.WriteByte('\\')
		}
		buf.WriteByte(b)
	}
	return buf.String()
}
