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

package dcd

import (
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/wtsi-hgi/dcdeposit/errs"
)

const ErrMockCreateFail = "create fail"
const ErrMockDepositFail = "deposit fail"

// MockClient satisfies the Client interface without talking to any server,
// keeping uploaded file contents in memory. For use during tests.
type MockClient struct {
	mu          sync.RWMutex
	datasets    []*Dataset
	submissions []*Submission
	files       map[string]map[string][]byte
	createFail  error
	depositFail error
	connected   bool
	nextID      int
}

// NewMockClient returns a MockClient that reports itself as connected.
func NewMockClient() *MockClient {
	return &MockClient{
		files:     make(map[string]map[string][]byte),
		connected: true,
	}
}

// MakeCreateFail will result in any subsequent CreateDataset()s failing with
// the given error. If err is nil, a 400 StatusError is used.
func (m *MockClient) MakeCreateFail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		err = &errs.StatusError{Method: http.MethodPost, URL: EndPointDrafts,
			Code: http.StatusBadRequest, Body: ErrMockCreateFail}
	}

	m.createFail = err
}

// MakeDepositFail will result in any subsequent DepositFile()s failing with
// the given error. If err is nil, a 500 StatusError is used.
func (m *MockClient) MakeDepositFail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		err = &errs.StatusError{Method: http.MethodPost, URL: EndPointDraftFiles,
			Code: http.StatusInternalServerError, Body: ErrMockDepositFail}
	}

	m.depositFail = err
}

// SetConnected sets what TestConnection() will return.
func (m *MockClient) SetConnected(connected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.connected = connected
}

// CreateDataset records the submission and returns a Dataset with a new ID.
func (m *MockClient) CreateDataset(submission *Submission) (*Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if submission == nil {
		return nil, Error{Msg: ErrNoSubmission}
	}

	m.submissions = append(m.submissions, submission)

	if m.createFail != nil {
		return nil, m.createFail
	}

	m.nextID++

	dataset := &Dataset{
		ID:          fmt.Sprintf("mock%d", m.nextID),
		Title:       submission.Title,
		Description: submission.Description,
		Version:     1,
	}

	m.datasets = append(m.datasets, dataset)
	m.files[dataset.ID] = make(map[string][]byte)

	return dataset, nil
}

// DepositFile reads all the content and stores it under the dataset and
// filename.
func (m *MockClient) DepositFile(dataset *Dataset, filename string, content io.Reader) (*File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if dataset == nil || dataset.ID == "" {
		return nil, Error{Msg: ErrNoDataset}
	}

	if filename == "" {
		return nil, Error{Msg: ErrNoFilename, ID: dataset.ID}
	}

	if m.depositFail != nil {
		return nil, m.depositFail
	}

	files, exists := m.files[dataset.ID]
	if !exists {
		return nil, &errs.StatusError{Method: http.MethodPost, URL: EndPointDraftFiles,
			Code: http.StatusNotFound}
	}

	b, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}

	files[filename] = b

	return &File{ID: dataset.ID + "/" + filename, Filename: filename, Size: int64(len(b))}, nil
}

// TestConnection returns whatever was last given to SetConnected(), defaulting
// to true.
func (m *MockClient) TestConnection() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.connected
}

// Submissions returns every submission given to CreateDataset(), including
// failed ones.
func (m *MockClient) Submissions() []*Submission {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]*Submission(nil), m.submissions...)
}

// Datasets returns the datasets successfully created so far.
func (m *MockClient) Datasets() []*Dataset {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]*Dataset(nil), m.datasets...)
}

// FileContent returns the content deposited in the given dataset under the
// given filename, and whether it exists.
func (m *MockClient) FileContent(datasetID, filename string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, exists := m.files[datasetID][filename]

	return b, exists
}
