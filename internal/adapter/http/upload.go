package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
)

const formField = "file"

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// sanitizeFilename reduces a client-supplied name to a safe base name:
// directory components are dropped, runs of characters outside
// [A-Za-z0-9._-] become "_", and leading dots and underscores are trimmed.
// An empty result means the name is unusable.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = path.Base(name)
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	return strings.TrimLeft(name, "._")
}

func hasCSVExtension(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	file, header, err := r.FormFile(formField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
			return
		}
		writeError(w, http.StatusBadRequest, "missing multipart field \"file\"")
		return
	}
	defer file.Close()

	name := sanitizeFilename(header.Filename)
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing filename")
		return
	}
	if !hasCSVExtension(name) {
		writeError(w, http.StatusUnsupportedMediaType, "only .csv uploads are accepted")
		return
	}

	if s.uploadDir != "" {
		if err := s.saveUpload(name, file); err != nil {
			s.logger.Error("save upload failed", "filename", name, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to store upload")
			return
		}
	}

	s.respondAnalysis(w, r, name, file)
}

// saveUpload copies the upload into the upload directory and rewinds it
// for analysis.
func (s *Server) saveUpload(name string, file multipart.File) error {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	dst, err := os.Create(filepath.Join(s.uploadDir, name))
	if err != nil {
		return fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		return fmt.Errorf("write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("close upload file: %w", err)
	}
	_, err = file.Seek(0, io.SeekStart)
	return err
}

// listSamples returns the .csv files in the samples directory, sorted. A
// missing directory yields an empty list.
func (s *Server) listSamples() ([]string, error) {
	names := []string{}
	if s.samplesDir == "" {
		return names, nil
	}
	entries, err := os.ReadDir(s.samplesDir)
	if errors.Is(err, os.ErrNotExist) {
		return names, nil
	}
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Type().IsRegular() && hasCSVExtension(e.Name()) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

func (s *Server) handleSamples(w http.ResponseWriter, _ *http.Request) {
	names, err := s.listSamples()
	if err != nil {
		s.logger.Error("list samples failed", "dir", s.samplesDir, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list samples")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"samples": names})
}

func (s *Server) handleAnalyzeSample(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	names, err := s.listSamples()
	if err != nil {
		s.logger.Error("list samples failed", "dir", s.samplesDir, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list samples")
		return
	}
	// Only names from the listing are opened, so no path can escape the directory.
	if !slices.Contains(names, name) {
		writeError(w, http.StatusNotFound, "sample not found")
		return
	}

	f, err := os.Open(filepath.Join(s.samplesDir, name))
	if err != nil {
		writeError(w, http.StatusNotFound, "sample not found")
		return
	}
	defer f.Close()

	s.respondAnalysis(w, r, name, f)
}
