// Package media keeps uploaded call audio on the local filesystem and hands
// out the URL it is served under.
package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidName is returned for ids that would escape the media directory.
var ErrInvalidName = errors.New("invalid media name")

// Store writes files under Dir and serves them under URLPrefix.
type Store struct {
	Dir       string
	URLPrefix string
}

// New creates dir if needed.
func New(dir, urlPrefix string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &Store{Dir: dir, URLPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// audioTypes are the extensions kept from client file names, with the
// Content-Type they are served as.
var audioTypes = map[string]string{
	".aac":  "audio/aac",
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".mp3":  "audio/mpeg",
	".oga":  "audio/ogg",
	".ogg":  "audio/ogg",
	".opus": "audio/ogg",
	".wav":  "audio/wav",
	".webm": "audio/webm",
}

// Save writes data as <id><ext>, where ext comes from fileName when it is a
// known audio extension, and returns the public URL. The write goes through a temp file so readers never see a
// partial file.
func (s *Store) Save(ctx context.Context, id, fileName string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if id == "" || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return "", ErrInvalidName
	}
	name := id + Ext(fileName)

	tmp, err := os.CreateTemp(s.Dir, ".upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.Dir, name)); err != nil {
		return "", err
	}
	return s.URLPrefix + "/" + name, nil
}

// Ext returns the lower-cased extension of name when it is a known audio
// extension, otherwise "".
func Ext(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := audioTypes[ext]; ok {
		return ext
	}
	return ""
}

// ContentType returns the audio type for name's extension, or
// application/octet-stream.
func ContentType(name string) string {
	if t, ok := audioTypes[Ext(name)]; ok {
		return t
	}
	return "application/octet-stream"
}

// Path resolves a stored file name to its path on disk. Names with
// directory parts, dot files and missing files report false.
func (s *Store) Path(name string) (string, bool) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", false
	}
	p := filepath.Join(s.Dir, name)
	fi, err := os.Stat(p)
	if err != nil || !fi.Mode().IsRegular() {
		return "", false
	}
	return p, true
}
