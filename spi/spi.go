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

// package spi defines the contract between a host electronic lab notebook and
// the repository plugins it can deposit exports into.

package spi

import (
	"net/url"
)

// RepositoryConfig holds the connection details a host supplies to a
// repository plugin at setup.
type RepositoryConfig struct {
	// ServerURL is the base URL of the repository service, eg.
	// https://data.mendeley.com
	ServerURL *url.URL

	// Identifier is the access token used to authenticate against the
	// repository service.
	Identifier string

	// RepoName is the name the host knows this plugin by.
	RepoName string
}

// Depositor is the user submitting an export.
type Depositor interface {
	Email() string
	UniqueName() string
}

// SubmissionMetadata is the user-entered metadata for a single export.
type SubmissionMetadata struct {
	Title       string
	Description string
	Authors     []Depositor
	Contacts    []Depositor
	Subjects    []string

	// License is optional; nil means no license was chosen.
	License *url.URL

	// DMPDOI is the DOI of an associated data management plan, if any.
	DMPDOI string

	Publish bool
}

// OperationResult is the outcome of a repository operation as reported to the
// host. URL is nil if the operation did not produce a link.
type OperationResult struct {
	Succeeded bool
	Message   string
	URL       *url.URL
}

// Subject is an entry in a repository's controlled subject taxonomy.
type Subject struct {
	Name    string
	Parents []string
}

// LicenseDef names a license and where its text lives.
type LicenseDef struct {
	URL  *url.URL
	Name string
}

// License is a LicenseDef offered to the user, possibly as the default.
type License struct {
	Definition LicenseDef
	Default    bool
}

// LicenseConfigInfo describes the licenses a repository accepts.
type LicenseConfigInfo struct {
	LicenseRequired bool

	// OtherLicensePermitted says if licenses beyond those in Licenses may be
	// used.
	OtherLicensePermitted bool

	Licenses []License
}

// RepoProperty is a provider-specific setting a host may render on its
// submission form.
type RepoProperty struct {
	Name        string
	Description string
	Required    bool
}

// Configurer is something that can be configured with a RepositoryConfig.
type Configurer interface {
	// Configure prepares the plugin for use with the given config. It should be
	// called once, before any other operation.
	Configure(config RepositoryConfig) error
}

// Repository is a plugin that deposits exports into an external repository.
//
// Operations never return errors for expected failures; instead the returned
// OperationResult has Succeeded false and a Message saying what went wrong.
type Repository interface {
	Configurer

	// SubmitDeposit deposits the local file at the given path along with the
	// metadata.
	SubmitDeposit(depositor Depositor, file string, metadata SubmissionMetadata,
		config RepositoryConfig) *OperationResult

	// TestConnection checks that the repository service can be reached with
	// the configured credentials.
	TestConnection() *OperationResult

	// Subjects returns the repository's subject taxonomy.
	Subjects() []Subject

	// LicenseConfigInfo returns the licenses the repository accepts.
	LicenseConfigInfo() LicenseConfigInfo

	// OtherProperties returns any provider-specific settings, keyed on name.
	OtherProperties() map[string]RepoProperty

	// Configurer returns the thing that configures this repository.
	Configurer() Configurer
}

// NewSuccess returns a succeeded OperationResult.
func NewSuccess(msg string, u *url.URL) *OperationResult {
	return &OperationResult{Succeeded: true, Message: msg, URL: u}
}

// NewFailure returns a failed OperationResult with no URL.
func NewFailure(msg string) *OperationResult {
	return &OperationResult{Message: msg}
}
