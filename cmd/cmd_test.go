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

package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/pflag"
	"github.com/wtsi-hgi/dcdeposit/adapter"
	"github.com/wtsi-hgi/dcdeposit/errs"
	"github.com/wtsi-hgi/dcdeposit/history"
	"github.com/wtsi-hgi/dcdeposit/internal/dcdtest"
	"github.com/wtsi-hgi/dcdeposit/spi"
)

const testToken = "API_ACCESS_TOKEN"

func TestConfig(t *testing.T) {
	Convey("Given a JSON config file", t, func() {
		origURL, origToken, origHistory, origTimeout := serverURL, token, historyPath, requestTimeout
		defer func() {
			serverURL, token, historyPath, requestTimeout = origURL, origToken, origHistory, origTimeout
		}()

		serverURL, token, historyPath, requestTimeout = defaultServerURL, "", "", 0

		dir := t.TempDir()
		path := filepath.Join(dir, "config.json")

		writeConfig := func(content string) {
			So(os.WriteFile(path, []byte(content), 0600), ShouldBeNil)
		}

		Convey("LoadConfig sets the global options from it", func() {
			writeConfig(`{"server_url": "https://dcd.example.com", "token": "tok",
				"timeout": "30s", "history": "/tmp/h.db"}`)

			So(LoadConfig(path, nil), ShouldBeNil)
			So(serverURL, ShouldEqual, "https://dcd.example.com")
			So(token, ShouldEqual, "tok")
			So(historyPath, ShouldEqual, "/tmp/h.db")
			So(requestTimeout, ShouldEqual, 30*time.Second)
		})

		Convey("LoadConfig doesn't override explicitly set flags", func() {
			writeConfig(`{"server_url": "https://dcd.example.com", "token": "tok"}`)

			flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
			flags.String(tokenFlag, "", "")
			So(flags.Set(tokenFlag, "cli"), ShouldBeNil)

			token = "cli"

			So(LoadConfig(path, flags), ShouldBeNil)
			So(serverURL, ShouldEqual, "https://dcd.example.com")
			So(token, ShouldEqual, "cli")
			So(requestTimeout, ShouldEqual, 0)
		})

		Convey("LoadConfig fails on bad JSON or a bad timeout", func() {
			writeConfig(`{"server_url": `)
			So(LoadConfig(path, nil), ShouldNotBeNil)

			writeConfig(`{"timeout": "soon"}`)
			So(LoadConfig(path, nil), ShouldNotBeNil)
		})

		Convey("LoadConfig fails on a missing file", func() {
			So(LoadConfig(filepath.Join(dir, "missing.json"), nil), ShouldNotBeNil)
		})
	})
}

func TestRepositoryConfig(t *testing.T) {
	Convey("repositoryConfig parses the server URL", t, func() {
		config, err := repositoryConfig("https://data.mendeley.com/", testToken)
		So(err, ShouldBeNil)
		So(config.ServerURL.String(), ShouldEqual, "https://data.mendeley.com")
		So(config.Identifier, ShouldEqual, testToken)
		So(config.RepoName, ShouldEqual, adapter.RepoName)

		_, err = repositoryConfig("data.mendeley.com", testToken)
		So(err, ShouldNotBeNil)

		_, err = repositoryConfig("://", testToken)
		So(err, ShouldNotBeNil)
	})

	Convey("titleFor only suffixes titles of multi-file deposits", t, func() {
		So(titleFor("My data", "/a/b/export.zip", 1), ShouldEqual, "My data")
		So(titleFor("My data", "/a/b/export.zip", 2), ShouldEqual, "My data (export.zip)")
	})
}

func TestDeposit(t *testing.T) {
	Convey("Given a fake Digital Commons Data server and a history database", t, func() {
		server := dcdtest.New(t, testToken)
		dir := t.TempDir()

		db, err := history.New(filepath.Join(dir, "history.db"))
		So(err, ShouldBeNil)

		defer db.Close()

		config, err := repositoryConfig(server.URL, testToken)
		So(err, ShouldBeNil)

		repo, err := configureRepository(config)
		So(err, ShouldBeNil)

		files := make([]string, 3)

		for i := range files {
			files[i] = filepath.Join(dir, "file"+string(rune('a'+i)))
			So(os.WriteFile(files[i], []byte("content"), 0600), ShouldBeNil)
		}

		opts := depositOptions{
			title:     "My data",
			depositor: depositor{name: "anyone", email: "email@somewhere.com"},
			workers:   2,
		}

		Convey("depositFiles deposits each file in to its own draft and records it", func() {
			records := depositFiles(repo, config, db, files, opts)
			So(len(records), ShouldEqual, len(files))
			So(server.Datasets(), ShouldEqual, len(files))

			for i, r := range records {
				So(r.Succeeded, ShouldBeTrue)
				So(r.Local, ShouldEqual, files[i])
				So(r.Size, ShouldEqual, uint64(7))
				So(r.Title, ShouldEqual, "My data ("+filepath.Base(files[i])+")")
				So(r.URL, ShouldEqual, server.URL+"/drafts/"+r.DatasetID)

				content, found := server.File(r.DatasetID, filepath.Base(files[i]))
				So(found, ShouldBeTrue)
				So(string(content), ShouldEqual, "content")

				last, errl := db.LastSuccess(files[i])
				So(errl, ShouldBeNil)
				So(last, ShouldNotBeNil)
				So(last.URL, ShouldEqual, r.URL)
			}

			all, errd := db.All()
			So(errd, ShouldBeNil)
			So(len(all), ShouldEqual, len(files))

			buf := new(bytes.Buffer)
			displayRecords(buf, all)
			So(buf.String(), ShouldContainSubstring, records[0].URL)
			So(buf.String(), ShouldContainSubstring, "7 B")
		})

		Convey("depositFiles records failures without a URL", func() {
			server.FailUpload(500)

			records := depositFiles(repo, config, nil, files[:1], opts)
			So(len(records), ShouldEqual, 1)
			So(records[0].Succeeded, ShouldBeFalse)
			So(records[0].URL, ShouldBeEmpty)
			So(records[0].Message, ShouldContainSubstring, "occurred while submitting to DigitalCommonsData")
			So(records[0].Title, ShouldEqual, "My data")

			buf := new(bytes.Buffer)
			displayRecords(buf, records)
			So(buf.String(), ShouldContainSubstring, statusFailed+": "+records[0].Message)
		})

		Convey("missing files and directories fail without creating drafts", func() {
			missing := filepath.Join(dir, "typo.zip")
			subDir := filepath.Join(dir, "subdir")
			So(os.Mkdir(subDir, 0700), ShouldBeNil)

			records := depositFiles(repo, config, nil, []string{missing}, opts)
			So(records[0].Succeeded, ShouldBeFalse)
			So(server.Datasets(), ShouldEqual, 0)

			records = depositFiles(repo, config, db, []string{missing, subDir, files[0]}, opts)
			So(len(records), ShouldEqual, 3)
			So(server.Datasets(), ShouldEqual, 1)

			for _, r := range records[:2] {
				So(r.Succeeded, ShouldBeFalse)
				So(r.URL, ShouldBeEmpty)
				So(r.DatasetID, ShouldBeEmpty)
				So(r.Message, ShouldStartWith, errs.KindIO+adapter.MsgSubmitFailedSuffix)
			}

			So(records[0].Message, ShouldContainSubstring, missing)
			So(records[1].Message, ShouldContainSubstring, ErrNotRegularFile)
			So(records[2].Succeeded, ShouldBeTrue)

			failed, errf := db.ForLocal(missing)
			So(errf, ShouldBeNil)
			So(len(failed), ShouldEqual, 1)
			So(failed[0].Succeeded, ShouldBeFalse)
		})

		Convey("checkLocalFile returns PathErrors for unusable paths", func() {
			size, errc := checkLocalFile(files[0])
			So(errc, ShouldBeNil)
			So(size, ShouldEqual, uint64(7))

			_, errc = checkLocalFile(dir)
			So(errors.Is(errc, errs.PathError{Msg: ErrNotRegularFile}), ShouldBeTrue)
			So(errs.Kind(errc), ShouldEqual, errs.KindIO)

			_, errc = checkLocalFile(filepath.Join(dir, "typo.zip"))
			So(errc, ShouldHaveSameTypeAs, errs.PathError{})
			So(errs.Kind(errc), ShouldEqual, errs.KindIO)
		})

		Convey("a bad token fails every deposit", func() {
			badConfig, errc := repositoryConfig(server.URL, "wrong")
			So(errc, ShouldBeNil)

			badRepo, errc := configureRepository(badConfig)
			So(errc, ShouldBeNil)

			records := depositFiles(badRepo, badConfig, db, files[:2], opts)
			for _, r := range records {
				So(r.Succeeded, ShouldBeFalse)
			}

			So(server.Datasets(), ShouldEqual, 0)

			last, errl := db.LastSuccess(files[0])
			So(errl, ShouldBeNil)
			So(last, ShouldBeNil)
		})
	})
}

func TestLicenses(t *testing.T) {
	Convey("displayRepositoryInfo shows the CC-0 license", t, func() {
		repo, err := spi.New(adapter.RepoName)
		So(err, ShouldBeNil)

		buf := new(bytes.Buffer)
		displayRepositoryInfo(buf, repo)

		out := buf.String()
		So(out, ShouldContainSubstring, adapter.CC0Name)
		So(out, ShouldContainSubstring, adapter.CC0URL)
		So(out, ShouldContainSubstring, "license required: true")
		So(out, ShouldContainSubstring, "other licenses permitted: false")
		So(out, ShouldContainSubstring, "subjects: 0")
	})
}

func TestDepositFlags(t *testing.T) {
	Convey("deposit only offers flags that affect the deposit", t, func() {
		for _, name := range []string{"title", "description", "email", "workers"} {
			So(depositCmd.Flags().Lookup(name), ShouldNotBeNil)
		}

		So(depositCmd.Flags().Lookup("publish"), ShouldBeNil)
		So(depositCmd.Long, ShouldContainSubstring, "never published")
	})
}
