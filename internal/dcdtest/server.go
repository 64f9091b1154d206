/*******************************************************************************
 * Copyright (c) 2026 Genome Research Ltd.
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

// package dcdtest provides an in-process fake Digital Commons Data server for
// tests.

package dcdtest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/wtsi-hgi/dcdeposit/dcd"
)

const (
	maxMemory   = 32 << 20
	filesSuffix = "/files"
)

// Server is a fake Digital Commons Data service that understands the drafts
// and draft files endpoints.
type Server struct {
	*httptest.Server

	token          string
	mu             sync.Mutex
	datasets       map[string]*dcd.Dataset
	submissions    []dcd.Submission
	files          map[string]map[string][]byte
	createFailCode int
	uploadFailCode int
	nextID         int
}

// New starts a Server that accepts the given bearer token. It is closed
// automatically when the test ends.
func New(tb testing.TB, token string) *Server {
	tb.Helper()

	s := &Server{
		token:    token,
		datasets: make(map[string]*dcd.Dataset),
		files:    make(map[string]map[string][]byte),
	}

	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	tb.Cleanup(s.Close)

	return s
}

// FailCreate makes subsequent dataset creations respond with the given status
// code. 0 restores normal behaviour.
func (s *Server) FailCreate(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.createFailCode = code
}

// FailUpload makes subsequent file uploads respond with the given status code.
// 0 restores normal behaviour.
func (s *Server) FailUpload(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.uploadFailCode = code
}

// Submissions returns the successfully decoded dataset creation requests.
func (s *Server) Submissions() []dcd.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]dcd.Submission(nil), s.submissions...)
}

// Datasets returns the number of datasets created.
func (s *Server) Datasets() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.datasets)
}

// File returns the content uploaded under the given dataset ID and filename.
func (s *Server) File(datasetID, filename string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, exists := s.files[datasetID][filename]

	return b, exists
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+s.token {
		http.Error(w, `{"message":"invalid token"}`, http.StatusUnauthorized)

		return
	}

	path := r.URL.Path

	switch {
	case path == dcd.EndPointDrafts && r.Method == http.MethodGet:
		s.list(w)
	case path == dcd.EndPointDrafts && r.Method == http.MethodPost:
		s.create(w, r)
	case strings.HasPrefix(path, dcd.EndPointDrafts+"/") && strings.HasSuffix(path, filesSuffix) &&
		r.Method == http.MethodPost:
		id := strings.TrimSuffix(strings.TrimPrefix(path, dcd.EndPointDrafts+"/"), filesSuffix)
		s.upload(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) list(w http.ResponseWriter) {
	s.mu.Lock()
	defer s.mu.Unlock()

	datasets := make([]*dcd.Dataset, 0, len(s.datasets))
	for _, ds := range s.datasets {
		datasets = append(datasets, ds)
	}

	writeJSON(w, http.StatusOK, datasets)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createFailCode != 0 {
		http.Error(w, `{"message":"create failed"}`, s.createFailCode)

		return
	}

	var sub dcd.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil || sub.Title == "" {
		http.Error(w, `{"message":"invalid submission"}`, http.StatusUnprocessableEntity)

		return
	}

	s.submissions = append(s.submissions, sub)
	s.nextID++

	ds := &dcd.Dataset{
		ID:          fmt.Sprintf("ds%d", s.nextID),
		Title:       sub.Title,
		Description: sub.Description,
		Version:     1,
	}

	s.datasets[ds.ID] = ds
	s.files[ds.ID] = make(map[string][]byte)

	writeJSON(w, http.StatusCreated, ds)
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.uploadFailCode != 0 {
		http.Error(w, `{"message":"upload failed"}`, s.uploadFailCode)

		return
	}

	files, exists := s.files[id]
	if !exists {
		http.Error(w, `{"message":"no such dataset"}`, http.StatusNotFound)

		return
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		http.Error(w, `{"message":"bad form"}`, http.StatusBadRequest)

		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, `{"message":"no file"}`, http.StatusBadRequest)

		return
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		http.Error(w, `{"message":"read failed"}`, http.StatusInternalServerError)

		return
	}

	files[header.Filename] = b

	writeJSON(w, http.StatusCreated, &dcd.File{
		ID:          id + "-" + header.Filename,
		Filename:    header.Filename,
		Size:        int64(len(b)),
		ContentType: header.Header.Get("Content-Type"),
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
