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
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize" //nolint:misspell
	"github.com/gammazero/workerpool"
	"github.com/spf13/cobra"
	"github.com/wtsi-hgi/dcdeposit/adapter"
	"github.com/wtsi-hgi/dcdeposit/errs"
	"github.com/wtsi-hgi/dcdeposit/history"
	"github.com/wtsi-hgi/dcdeposit/spi"
)

const (
	defaultDepositWorkers = 2

	ErrNotRegularFile = "not a regular file"
)

// options for this cmd.
var depositTitle string
var depositDescription string
var depositEmail string
var depositWorkers int

// depositCmd represents the deposit command.
var depositCmd = &cobra.Command{
	Use:   "deposit file [file...]",
	Short: "Deposit files in to new Digital Commons Data drafts",
	Long: `Deposit files in to new Digital Commons Data drafts.

Each given file is uploaded in to its own newly created draft dataset, titled
with --title (and, when depositing more than one file, suffixed with the file's
name) and described by --description.

On success, the URL of each draft is printed. Drafts are never published by
this command; visit the URL to review and publish them on the website.

Files that don't exist, can't be read or aren't regular files fail without
anything being created in Digital Commons Data.

Files are deposited --workers at a time. If a file has been successfully
deposited before (according to the --history database), a warning is given but
it is deposited again anyway.

If a file fails to upload after its draft was created, the empty draft remains
and should be deleted or completed using the website.

Exits non-zero if any deposit failed.
`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		repo, config := newRepository()

		db := openHistory()
		if db != nil {
			defer db.Close()
		}

		results := depositFiles(repo, config, db, args, depositOptions{
			title:       depositTitle,
			description: depositDescription,
			depositor:   currentDepositor(depositEmail),
			workers:     depositWorkers,
		})

		failed := 0

		for _, r := range results {
			if r.Succeeded {
				cliPrintf("%s (%s): %s\n", r.Local, humanize.IBytes(r.Size), r.URL)

				continue
			}

			failed++

			warn("%s: %s", r.Local, r.Message)
		}

		if failed > 0 {
			dief("%d of %d deposits failed", failed, len(results))
		}
	},
}

func init() {
	RootCmd.AddCommand(depositCmd)

	// flags specific to this sub-command
	depositCmd.Flags().StringVarP(&depositTitle, "title", "t", "", "title of the new dataset(s)")
	depositCmd.Flags().StringVarP(&depositDescription, "description", "d", "",
		"description of the new dataset(s)")
	depositCmd.Flags().StringVarP(&depositEmail, "email", "e", "", "your email address, as the depositor")
	depositCmd.Flags().IntVarP(&depositWorkers, "workers", "w", defaultDepositWorkers,
		"number of files to deposit simultaneously")

	if err := depositCmd.MarkFlagRequired("title"); err != nil {
		die(err)
	}
}

type depositOptions struct {
	title       string
	description string
	depositor   spi.Depositor
	workers     int
}

// openHistory opens the history database at historyPath, returning nil (with a
// warning) if that isn't possible.
func openHistory() *history.DB {
	if historyPath == "" {
		return nil
	}

	db, err := history.New(historyPath)
	if err != nil {
		warn("can't open history database; deposits won't be recorded (%s)", err)

		return nil
	}

	return db
}

// depositFiles submits each of the given files as its own deposit using the
// repo, opts.workers at a time. Each result is recorded in the db, if not nil.
// Returned records are in the same order as files.
func depositFiles(repo spi.Repository, config spi.RepositoryConfig, db *history.DB,
	files []string, opts depositOptions) []*history.Record {
	workers := opts.workers
	if workers < 1 {
		workers = 1
	}

	pool := workerpool.New(workers)
	records := make([]*history.Record, len(files))

	var mu sync.Mutex

	for i, file := range files {
		i, local := i, absPath(file)

		warnIfDeposited(db, local)

		metadata := spi.SubmissionMetadata{
			Title:       titleFor(opts.title, local, len(files)),
			Description: opts.description,
		}

		if opts.depositor != nil {
			metadata.Authors = []spi.Depositor{opts.depositor}
			metadata.Contacts = []spi.Depositor{opts.depositor}
		}

		pool.Submit(func() {
			r := depositFile(repo, config, opts.depositor, local, metadata)

			mu.Lock()
			records[i] = r
			mu.Unlock()

			recordDeposit(db, r)
		})
	}

	pool.StopWait()

	return records
}

// depositFile submits a single deposit and converts the result to a Record.
func depositFile(repo spi.Repository, config spi.RepositoryConfig, depositor spi.Depositor,
	local string, metadata spi.SubmissionMetadata) *history.Record {
	r := &history.Record{
		Local:     local,
		ServerURL: config.ServerURL.String(),
		Title:     metadata.Title,
	}

	size, err := checkLocalFile(local)
	if err != nil {
		r.Message = errs.Kind(err) + adapter.MsgSubmitFailedSuffix + ": " + err.Error()

		return r
	}

	r.Size = size

	result := repo.SubmitDeposit(depositor, local, metadata, config)

	r.Succeeded = result.Succeeded
	r.Message = result.Message

	if result.URL != nil {
		r.URL = result.URL.String()
		r.DatasetID = filepath.Base(result.URL.Path)
	}

	return r
}

// checkLocalFile returns the size of the regular file at local, or an
// errs.PathError if it doesn't exist, can't be opened or isn't a regular file.
func checkLocalFile(local string) (uint64, error) {
	f, err := os.Open(local)
	if err != nil {
		return 0, errs.PathError{Msg: pathErrMsg(err), Path: local}
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return 0, errs.PathError{Msg: pathErrMsg(err), Path: local}
	}

	if !fi.Mode().IsRegular() {
		return 0, errs.PathError{Msg: ErrNotRegularFile, Path: local}
	}

	return uint64(fi.Size()), nil
}

// pathErrMsg returns the underlying message of an *fs.PathError, without the
// op and path.
func pathErrMsg(err error) string {
	var fsErr *fs.PathError
	if errors.As(err, &fsErr) {
		return fsErr.Err.Error()
	}

	return err.Error()
}

// titleFor returns title, suffixed with the basename of the local path if there
// are multiple files being deposited.
func titleFor(title, local string, numFiles int) string {
	if numFiles <= 1 {
		return title
	}

	return title + " (" + filepath.Base(local) + ")"
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	return abs
}

func warnIfDeposited(db *history.DB, local string) {
	if db == nil {
		return
	}

	previous, err := db.LastSuccess(local)
	if err != nil {
		warn("failed to check history for %s: %s", local, err)

		return
	}

	if previous != nil {
		warn("%s was already deposited %s as %s", local, humanize.Time(previous.Deposited), previous.URL)
	}
}

func recordDeposit(db *history.DB, r *history.Record) {
	if db == nil {
		return
	}

	if err := db.Add(r); err != nil {
		warn("failed to record deposit of %s: %s", r.Local, err)
	}
}
