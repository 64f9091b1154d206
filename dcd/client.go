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

// package dcd is a client for the Digital Commons Data (Mendeley Data) REST
// API, able to create draft datasets and upload files in to them.

package dcd

import (
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/wtsi-hgi/dcdeposit/errs"
)

const (
	EndPointDrafts     = "/api/datasets/drafts"
	EndPointDraftFiles = EndPointDrafts + "/{id}/files"

	fileFormField  = "file"
	maxErrBodySize = 512
	userAgent      = "dcdeposit"

	ErrNoSubmission = "no submission supplied"
	ErrNoTitle      = "submission has no title"
	ErrNoDataset    = "dataset has no ID"
	ErrNoFilename   = "no filename supplied"
)

// DefaultTimeout is used for requests when a Config has no Timeout.
const DefaultTimeout = 5 * time.Minute

// Error is returned when a request can't be made because of bad input.
type Error struct {
	Msg string
	ID  string
}

func (e Error) Error() string {
	if e.ID != "" {
		return e.Msg + " [" + e.ID + "]"
	}

	return e.Msg
}

// Kind lets errs.Kind() classify our Errors.
func (e Error) Kind() string {
	return errs.KindInvalid
}

// Client is something that can talk to Digital Commons Data.
type Client interface {
	// CreateDataset creates a new draft dataset from the given submission.
	CreateDataset(submission *Submission) (*Dataset, error)

	// DepositFile uploads the content as a file with the given name in to the
	// given dataset.
	DepositFile(dataset *Dataset, filename string, content io.Reader) (*File, error)

	// TestConnection returns true if the service can be reached and accepts
	// our credentials.
	TestConnection() bool
}

// Config says how to connect to Digital Commons Data.
type Config struct {
	// ServerURL is the base URL of the service, eg. https://data.mendeley.com
	ServerURL string

	// Token is the API access token sent as a bearer token.
	Token string

	// Timeout for each request; defaults to DefaultTimeout.
	Timeout time.Duration
}

// RestClient is a Client that makes real HTTP requests. It is safe for
// concurrent use.
type RestClient struct {
	client *resty.Client
}

// New returns a RestClient that will talk to the service at the Config's
// ServerURL, authenticating with its Token.
func New(config Config) *RestClient {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(config.ServerURL, "/")).
		SetAuthToken(config.Token).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent)

	return &RestClient{client: client}
}

// CreateDataset POSTs the submission to the drafts endpoint and returns the
// newly created draft Dataset.
func (c *RestClient) CreateDataset(submission *Submission) (*Dataset, error) {
	if submission == nil {
		return nil, Error{Msg: ErrNoSubmission}
	}

	if submission.Title == "" {
		return nil, Error{Msg: ErrNoTitle}
	}

	dataset := &Dataset{}

	resp, err := c.client.R().
		SetBody(submission).
		SetResult(dataset).
		ForceContentType("application/json").
		Post(EndPointDrafts)
	if err != nil {
		return nil, err
	}

	if err = checkResponse(resp); err != nil {
		return nil, err
	}

	return dataset, nil
}

// DepositFile uploads the content as a multipart form file with the given
// filename in to the given dataset.
func (c *RestClient) DepositFile(dataset *Dataset, filename string, content io.Reader) (*File, error) {
	if dataset == nil || dataset.ID == "" {
		return nil, Error{Msg: ErrNoDataset}
	}

	if filename == "" {
		return nil, Error{Msg: ErrNoFilename, ID: dataset.ID}
	}

	file := &File{}

	resp, err := c.client.R().
		SetPathParam("id", dataset.ID).
		SetFileReader(fileFormField, filename, content).
		SetResult(file).
		ForceContentType("application/json").
		Post(EndPointDraftFiles)
	if err != nil {
		return nil, err
	}

	if err = checkResponse(resp); err != nil {
		return nil, err
	}

	return file, nil
}

// TestConnection does a minimal listing of drafts, returning true if that
// succeeded.
func (c *RestClient) TestConnection() bool {
	resp, err := c.client.R().
		SetQueryParam("limit", "1").
		Get(EndPointDrafts)
	if err != nil {
		return false
	}

	return resp.IsSuccess()
}

// checkResponse converts non-2xx responses in to a *errs.StatusError.
func checkResponse(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}

	statusErr := &errs.StatusError{
		Code: resp.StatusCode(),
		Body: truncateBody(resp.String(), maxErrBodySize),
	}

	if resp.Request != nil {
		statusErr.Method = resp.Request.Method
		statusErr.URL = resp.Request.URL
	}

	if statusErr.Code == 0 {
		statusErr.Code = http.StatusInternalServerError
	}

	return statusErr
}

// truncateBody returns body cut to at most limit bytes, without splitting a
// UTF-8 encoded rune.
func truncateBody(body string, limit int) string {
	if len(body) <= limit {
		return body
	}

	for limit > 0 && !utf8.RuneStart(body[limit]) {
		limit--
	}

	return body[:limit]
}
