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
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/wtsi-hgi/dcdeposit/adapter"
	"github.com/wtsi-hgi/dcdeposit/spi"
)

// licensesCmd represents the licenses command.
var licensesCmd = &cobra.Command{
	Use:   "licenses",
	Short: "Show the licenses Digital Commons Data accepts",
	Long: `Show the licenses Digital Commons Data accepts.

Lists the licenses that deposited datasets may be released under, along with
any subjects and extra properties the repository supports. Does not contact the
server.
`,
	Run: func(cmd *cobra.Command, args []string) {
		repo, err := spi.New(adapter.RepoName)
		if err != nil {
			die(err)
		}

		displayRepositoryInfo(os.Stdout, repo)
	},
}

func init() {
	RootCmd.AddCommand(licensesCmd)
}

// displayRepositoryInfo writes the repository's license catalog, subjects and
// other properties to w.
func displayRepositoryInfo(w io.Writer, repo spi.Repository) {
	licenseInfo := repo.LicenseConfigInfo()

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"License", "URL", "Default"})
	table.SetAutoWrapText(false)

	for _, l := range licenseInfo.Licenses {
		u := ""
		if l.Definition.URL != nil {
			u = l.Definition.URL.String()
		}

		table.Append([]string{l.Definition.Name, u, strconv.FormatBool(l.Default)})
	}

	table.Render()

	fmt.Fprintf(w, "license required: %t\n", licenseInfo.LicenseRequired)
	fmt.Fprintf(w, "other licenses permitted: %t\n", licenseInfo.OtherLicensePermitted)
	fmt.Fprintf(w, "subjects: %d\n", len(repo.Subjects()))
	fmt.Fprintf(w, "other properties: %d\n", len(repo.OtherProperties()))
}
