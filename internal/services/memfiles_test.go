package services

import (
	"bytes"
	"io"

	"articledesk/internal/domain"
)

type memFiles struct {
	files map[string][]byte
}

func (f *memFiles) Save(name string, r io.Reader, limit int64) (string, int64, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, limit+1))
	if err != nil {
		return "", 0, err
	}
	if n > limit {
		return "", 0, domain.ValidationError{Field: "file", Msg: "too large"}
	}
	if f.files == nil {
		f.files = map[string][]byte{}
	}
	path := "mem/" + name
	f.files[path] = buf.Bytes()
	return path, n, nil
}

func (f *memFiles) Stat(path string) (int64, error) {
	b, ok := f.files[path]
	if !ok {
		return 0, domain.NotFoundError{Resource: "file"}
	}
	return int64(len(b)), nil
}

func (f *memFiles) Remove(path string) error {
	delete(f.files, path)
	return nil
}
