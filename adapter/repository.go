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

// package adapter implements a spi.Repository that deposits exports in to
// Digital Commons Data.

package adapter

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/wtsi-hgi/dcdeposit/dcd"
	"github.com/wtsi-hgi/dcdeposit/errs"
	"github.com/wtsi-hgi/dcdeposit/spi"
)

const (
	// RepoName is the name we register ourselves under with spi.Register().
	RepoName = "app.digital_commons_data"

	// UploadType identifies where deposited datasets came from.
	UploadType = "Exported from RSpace ELN"

	draftsPath = "drafts"

	MsgSubmitSucceeded     = "Export uploaded to DigitalCommonsData successfully."
	MsgSubmitFailedSuffix  = " occurred while submitting to DigitalCommonsData"
	MsgConnectionSucceeded = "Test Digital Commons Data connection succeeded"
	MsgConnectionFailed    = "Test Digital Commons Data connection failed"

	CC0Name = "CC-0"
	CC0URL  = "https://creativecommons.org/publicdomain/zero/1.0/"
)

// ErrNoServerURL is returned by Configure() if the config lacks a ServerURL.
var ErrNoServerURL = errors.New("repository config has no server URL")

func init() {
	if err := spi.Register(RepoName, func() spi.Repository { return New(zerolog.Nop()) }); err != nil {
		panic(err)
	}
}

// Repository is a spi.Repository and spi.Configurer that uses a dcd.Client to
// create a draft dataset for each deposit and upload the exported file in to
// it.
type Repository struct {
	mu     sync.RWMutex
	client dcd.Client
	logger zerolog.Logger
}

// New returns an unconfigured Repository that logs failures to the given
// logger. You must call Configure() or SetClient() before using it.
func New(logger zerolog.Logger) *Repository {
	return &Repository{logger: logger}
}

// SetLogger replaces the logger that failures are logged to.
func (r *Repository) SetLogger(logger zerolog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger = logger
}

// Configure creates a dcd.RestClient for the config's ServerURL, using its
// Identifier as the access token.
func (r *Repository) Configure(config spi.RepositoryConfig) error {
	if config.ServerURL == nil {
		return ErrNoServerURL
	}

	r.SetClient(dcd.New(dcd.Config{
		ServerURL: config.ServerURL.String(),
		Token:     config.Identifier,
	}))

	return nil
}

// SetClient sets the client used for all remote operations, replacing any
// client made by Configure().
func (r *Repository) SetClient(client dcd.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.client = client
}

func (r *Repository) getClient() (dcd.Client, zerolog.Logger) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.client, r.logger
}

// SubmitDeposit creates a draft dataset titled and described by the metadata,
// then uploads the local file in to it.
//
// It never fails outright: any error is logged and turned in to a failed
// result whose message names the kind of error. On success, the result URL
// points to the new draft under the config's ServerURL.
//
// If the upload fails after the dataset was created, the empty draft is left
// in place.
//
// If config has no ServerURL the deposit still succeeds, but the result has a
// nil URL and a warning is logged.
func (r *Repository) SubmitDeposit(depositor spi.Depositor, file string,
	metadata spi.SubmissionMetadata, config spi.RepositoryConfig) *spi.OperationResult {
	client, logger := r.getClient()

	dataset, err := r.deposit(client, file, metadata)
	if err != nil {
		kind := errs.Kind(err)

		event := logger.Error().Err(err).Str("kind", kind).Str("file", file)
		if depositor != nil {
			event = event.Str("depositor", depositor.UniqueName())
		}

		if dataset != nil {
			event = event.Str("dataset", dataset.ID)
		}

		event.Msg("exception" + MsgSubmitFailedSuffix)

		return spi.NewFailure(kind + MsgSubmitFailedSuffix)
	}

	u := draftURL(config.ServerURL, dataset.ID)
	if u == nil {
		logger.Warn().Str("file", file).Str("dataset", dataset.ID).Msg("no server URL to make draft URL from")
	}

	return spi.NewSuccess(MsgSubmitSucceeded, u)
}

// deposit does the dataset creation and file upload. A non-nil dataset is
// returned alongside an error if the dataset was created but the upload
// failed.
func (r *Repository) deposit(client dcd.Client, file string,
	metadata spi.SubmissionMetadata) (*dcd.Dataset, error) {
	if client == nil {
		return nil, errs.ErrNotConfigured
	}

	dataset, err := client.CreateDataset(newSubmission(metadata))
	if err != nil {
		return nil, err
	}

	f, err := os.Open(file)
	if err != nil {
		return dataset, err
	}
	defer f.Close()

	_, err = client.DepositFile(dataset, filepath.Base(file), f)

	return dataset, err
}

func newSubmission(metadata spi.SubmissionMetadata) *dcd.Submission {
	return &dcd.Submission{
		Title:       metadata.Title,
		Description: metadata.Description,
		UploadType:  UploadType,
	}
}

// draftURL returns serverURL/drafts/id. Returns nil if serverURL is nil.
func draftURL(serverURL *url.URL, id string) *url.URL {
	if serverURL == nil {
		return nil
	}

	return serverURL.JoinPath(draftsPath, id)
}

// TestConnection reports if our client can connect to Digital Commons Data.
func (r *Repository) TestConnection() *spi.OperationResult {
	client, _ := r.getClient()

	if client != nil && client.TestConnection() {
		return spi.NewSuccess(MsgConnectionSucceeded, nil)
	}

	return spi.NewFailure(MsgConnectionFailed)
}

// Configurer returns ourselves.
func (r *Repository) Configurer() spi.Configurer {
	return r
}

// Subjects always returns an empty slice, since Digital Commons Data has no
// controlled subject vocabulary.
func (r *Repository) Subjects() []spi.Subject {
	return []spi.Subject{}
}

// LicenseConfigInfo says a license is required, and that the only one allowed
// is CC-0.
func (r *Repository) LicenseConfigInfo() spi.LicenseConfigInfo {
	u, err := url.Parse(CC0URL)
	if err != nil {
		panic(err)
	}

	return spi.LicenseConfigInfo{
		LicenseRequired:       true,
		OtherLicensePermitted: false,
		Licenses: []spi.License{
			{Definition: spi.LicenseDef{URL: u, Name: CC0Name}},
		},
	}
}

// OtherProperties always returns an empty map.
func (r *Repository) OtherProperties() map[string]spi.RepoProperty {
	return make(map[string]spi.RepoProperty)
}
