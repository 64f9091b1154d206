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

package adapter

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/wtsi-hgi/dcdeposit/dcd"
	"github.com/wtsi-hgi/dcdeposit/errs"
	"github.com/wtsi-hgi/dcdeposit/internal/dcdtest"
	"github.com/wtsi-hgi/dcdeposit/spi"
)

const (
	testToken   = "API_ACCESS_TOKEN"
	testContent = "test file content\n"
)

type testDepositor struct{}

func (testDepositor) Email() string      { return "email@somewhere.com" }
func (testDepositor) UniqueName() string { return "anyone" }

func TestRepository(t *testing.T) {
	Convey("Given a configured Repository with a mock client", t, func() {
		logs := new(bytes.Buffer)
		repo := New(zerolog.New(logs))
		config := testConfig(t, "https://data.mendeley.com")

		So(repo.Configure(config), ShouldBeNil)

		client := dcd.NewMockClient()
		repo.SetClient(client)

		file := writeTestFile(t)
		metadata := testMetadata(t)

		Convey("TestConnection reflects the client's connectivity", func() {
			result := repo.TestConnection()
			So(result.Succeeded, ShouldBeTrue)
			So(result.Message, ShouldEqual, MsgConnectionSucceeded)
			So(result.URL, ShouldBeNil)

			client.SetConnected(false)
			result = repo.TestConnection()
			So(result.Succeeded, ShouldBeFalse)
			So(result.Message, ShouldEqual, MsgConnectionFailed)
			So(result.URL, ShouldBeNil)
		})

		Convey("Subjects and OtherProperties are empty", func() {
			So(repo.Subjects(), ShouldBeEmpty)
			So(repo.Subjects(), ShouldNotBeNil)
			So(repo.OtherProperties(), ShouldBeEmpty)
			So(repo.OtherProperties(), ShouldNotBeNil)
		})

		Convey("LicenseConfigInfo requires the single CC-0 license", func() {
			info := repo.LicenseConfigInfo()
			So(info.LicenseRequired, ShouldBeTrue)
			So(info.OtherLicensePermitted, ShouldBeFalse)
			So(len(info.Licenses), ShouldEqual, 1)
			So(info.Licenses[0].Definition.Name, ShouldEqual, CC0Name)
			So(info.Licenses[0].Definition.URL.String(), ShouldEqual, CC0URL)
		})

		Convey("Configurer returns the Repository itself", func() {
			So(repo.Configurer(), ShouldPointTo, repo)
		})

		Convey("SubmitDeposit creates a dataset and uploads the file", func() {
			result := repo.SubmitDeposit(testDepositor{}, file, metadata, config)
			So(result.Succeeded, ShouldBeTrue)
			So(result.Message, ShouldEqual, MsgSubmitSucceeded)
			So(result.URL.String(), ShouldEqual, "https://data.mendeley.com/drafts/mock1")

			subs := client.Submissions()
			So(len(subs), ShouldEqual, 1)
			So(subs[0], ShouldResemble, &dcd.Submission{
				Title:       "title",
				Description: "desc",
				UploadType:  UploadType,
			})

			content, exists := client.FileContent("mock1", "test.txt")
			So(exists, ShouldBeTrue)
			So(string(content), ShouldEqual, testContent)
			So(logs.String(), ShouldBeBlank)
		})

		Convey("SubmitDeposit fails if dataset creation fails", func() {
			client.MakeCreateFail(nil)

			result := repo.SubmitDeposit(testDepositor{}, file, metadata, config)
			So(result.Succeeded, ShouldBeFalse)
			So(result.Message, ShouldEqual, errs.KindHTTPClient+MsgSubmitFailedSuffix)
			So(result.URL, ShouldBeNil)
			So(logs.String(), ShouldContainSubstring, dcd.ErrMockCreateFail)
			So(logs.String(), ShouldContainSubstring, `"depositor":"anyone"`)
		})

		Convey("SubmitDeposit fails if the file upload fails, leaving the dataset", func() {
			client.MakeDepositFail(nil)

			result := repo.SubmitDeposit(testDepositor{}, file, metadata, config)
			So(result.Succeeded, ShouldBeFalse)
			So(result.Message, ShouldEqual, errs.KindHTTPServer+MsgSubmitFailedSuffix)
			So(result.URL, ShouldBeNil)
			So(len(client.Datasets()), ShouldEqual, 1)
			So(logs.String(), ShouldContainSubstring, `"dataset":"mock1"`)
		})

		Convey("SubmitDeposit fails with an IOError if the file can't be read", func() {
			missing := filepath.Join(t.TempDir(), "missing.txt")

			result := repo.SubmitDeposit(nil, missing, metadata, config)
			So(result.Succeeded, ShouldBeFalse)
			So(result.Message, ShouldEqual, errs.KindIO+MsgSubmitFailedSuffix)
			So(logs.String(), ShouldContainSubstring, missing)
		})

		Convey("SubmitDeposit fails on transport errors", func() {
			client.MakeCreateFail(&url.Error{Op: "Post", URL: "https://x", Err: errors.New("refused")})

			result := repo.SubmitDeposit(nil, file, metadata, config)
			So(result.Succeeded, ShouldBeFalse)
			So(result.Message, ShouldEqual, errs.KindTransport+MsgSubmitFailedSuffix)
		})

		Convey("SubmitDeposit succeeds with no URL, and warns, if the config has no ServerURL", func() {
			result := repo.SubmitDeposit(nil, file, metadata, spi.RepositoryConfig{Identifier: testToken})
			So(result.Succeeded, ShouldBeTrue)
			So(result.URL, ShouldBeNil)
			So(len(client.Datasets()), ShouldEqual, 1)
			So(logs.String(), ShouldContainSubstring, `"level":"warn"`)
			So(logs.String(), ShouldContainSubstring, "mock1")
		})
	})

	Convey("An unconfigured Repository fails operations without panicking", t, func() {
		repo := New(zerolog.Nop())
		config := testConfig(t, "https://data.mendeley.com")

		result := repo.SubmitDeposit(nil, "/some/file", testMetadata(t), config)
		So(result.Succeeded, ShouldBeFalse)
		So(result.Message, ShouldEqual, errs.KindNotConfigured+MsgSubmitFailedSuffix)

		So(repo.TestConnection().Succeeded, ShouldBeFalse)
		So(repo.Subjects(), ShouldBeEmpty)
		So(repo.LicenseConfigInfo().LicenseRequired, ShouldBeTrue)
		So(repo.OtherProperties(), ShouldBeEmpty)
	})

	Convey("Configure fails without a server URL", t, func() {
		repo := New(zerolog.Nop())
		So(repo.Configure(spi.RepositoryConfig{Identifier: testToken}), ShouldEqual, ErrNoServerURL)
	})

	Convey("The Repository is registered with the spi", t, func() {
		So(spi.Names(), ShouldContain, RepoName)

		repo, err := spi.New(RepoName)
		So(err, ShouldBeNil)

		_, ok := repo.(*Repository)
		So(ok, ShouldBeTrue)
	})
}

func TestRepositoryEndToEnd(t *testing.T) {
	Convey("Given a Digital Commons Data server and a Repository configured for it", t, func() {
		server := dcdtest.New(t, testToken)
		config := testConfig(t, server.URL)
		logs := new(bytes.Buffer)

		repo := New(zerolog.New(logs))
		So(repo.Configure(config), ShouldBeNil)

		file := writeTestFile(t)
		metadata := testMetadata(t)

		Convey("TestConnection succeeds", func() {
			So(repo.TestConnection().Succeeded, ShouldBeTrue)
		})

		Convey("SubmitDeposit uploads the file to a new draft", func() {
			result := repo.SubmitDeposit(testDepositor{}, file, metadata, config)
			So(result.Succeeded, ShouldBeTrue)
			So(result.URL.String(), ShouldEqual, server.URL+"/drafts/ds1")

			content, exists := server.File("ds1", "test.txt")
			So(exists, ShouldBeTrue)
			So(string(content), ShouldEqual, testContent)
		})

		Convey("SubmitDeposit reports server-side upload failures", func() {
			server.FailUpload(http.StatusInternalServerError)

			result := repo.SubmitDeposit(testDepositor{}, file, metadata, config)
			So(result.Succeeded, ShouldBeFalse)
			So(result.Message, ShouldEqual, errs.KindHTTPServer+MsgSubmitFailedSuffix)
			So(server.Datasets(), ShouldEqual, 1)
		})

		Convey("A bad token results in failed operations", func() {
			config.Identifier = "wrong"
			So(repo.Configure(config), ShouldBeNil)

			So(repo.TestConnection().Succeeded, ShouldBeFalse)

			result := repo.SubmitDeposit(testDepositor{}, file, metadata, config)
			So(result.Succeeded, ShouldBeFalse)
			So(result.Message, ShouldEqual, errs.KindHTTPClient+MsgSubmitFailedSuffix)
		})
	})
}

func testConfig(t *testing.T, serverURL string) spi.RepositoryConfig {
	t.Helper()

	u, err := url.Parse(serverURL)
	So(err, ShouldBeNil)

	return spi.RepositoryConfig{ServerURL: u, Identifier: testToken, RepoName: RepoName}
}

func testMetadata(t *testing.T) spi.SubmissionMetadata {
	t.Helper()

	license, err := url.Parse(CC0URL)
	So(err, ShouldBeNil)

	return spi.SubmissionMetadata{
		Title:       "title",
		Description: "desc",
		Authors:     []spi.Depositor{testDepositor{}},
		Contacts:    []spi.Depositor{testDepositor{}},
		Subjects:    []string{"Other natural sciences"},
		License:     license,
		DMPDOI:      "10.5072/digitalCommonsData.1059996",
	}
}

func writeTestFile(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.txt")
	So(os.WriteFile(path, []byte(testContent), 0600), ShouldBeNil)

	return path
}
