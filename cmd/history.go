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
	"io"
	"os"

	"github.com/dustin/go-humanize" //nolint:misspell
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/wtsi-hgi/dcdeposit/history"
)

const statusFailed = "failed"

// options for this cmd.
var historyFile string

// historyCmd represents the history command.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show your past deposits",
	Long: `Show your past deposits.

Lists every deposit attempt recorded in the --history database, most recent
first. Provide --file to see only the deposits of that local file.

Successful deposits show the URL of their draft dataset; failed ones show why
they failed.
`,
	Run: func(cmd *cobra.Command, args []string) {
		if historyPath == "" {
			dief("you must supply --history")
		}

		db, err := history.New(historyPath)
		if err != nil {
			die(err)
		}
		defer db.Close()

		var records []*history.Record

		if historyFile != "" {
			records, err = db.ForLocal(absPath(historyFile))
		} else {
			records, err = db.All()
		}

		if err != nil {
			die(err)
		}

		if len(records) == 0 {
			warn("no deposits")

			return
		}

		displayRecords(os.Stdout, records)
	},
}

func init() {
	RootCmd.AddCommand(historyCmd)

	// flags specific to this sub-command
	historyCmd.Flags().StringVarP(&historyFile, "file", "f", "", "only show deposits of this local file")
}

// displayRecords writes a table of the given records to w.
func displayRecords(w io.Writer, records []*history.Record) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Deposited", "Local", "Size", "Title", "Result"})
	table.SetAutoWrapText(false)

	for _, r := range records {
		result := r.URL
		if !r.Succeeded {
			result = statusFailed + ": " + r.Message
		}

		table.Append([]string{
			humanize.Time(r.Deposited),
			r.Local,
			humanize.IBytes(r.Size),
			r.Title,
			result,
		})
	}

	table.Render()
}
