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

// package cmd is the cobra file that enables subcommands and handles
// command-line args.

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/inconshreveable/log15"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// appLogger is used for logging events in our commands.
var appLogger = log15.New()

// repoLogger is given to the repository adapter for logging failed deposits.
var repoLogger = zerolog.Nop()

// global options.
var (
	serverURL   string
	token       string
	configPath  string
	historyPath string
)

const (
	serverURLEnvKey = "DCD_SERVER_URL"
	tokenEnvKey     = "DCD_TOKEN"
	configEnvKey    = "DCD_CONFIG"
	historyEnvKey   = "DCD_HISTORY"

	defaultServerURL = "https://data.mendeley.com"
	historyBasename  = ".dcdeposit.db"
	serverURLFlag    = "url"
	tokenFlag        = "token"
	historyFlag      = "history"
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "dcdeposit",
	Short: "dcdeposit deposits files in to Digital Commons Data",
	Long: `dcdeposit deposits files in to Digital Commons Data.

Each file you deposit gets its own new draft dataset, which you can then review
and publish using the Digital Commons Data website, eg.:

dcdeposit test
dcdeposit deposit -t 'My experiment' -d 'Raw results' export.zip
dcdeposit history

You'll need an API access token, supplied with --token or the ` + tokenEnvKey + `
environment variable. If neither is set and you're at a terminal, you'll be asked
for it.

The server defaults to ` + defaultServerURL + `, and can be changed with --url or
the ` + serverURLEnvKey + ` environment variable.

The ` + configEnvKey + ` environment variable (or --config) can be set to specify
a JSON configuration file, used for any of the above that weren't given on the
command line:

{
	"server_url": "https://data.mendeley.com",
	"token": "API_ACCESS_TOKEN",
	"timeout": "5m",
	"history": "/path/to/history.db"
}

A record of every deposit attempt is kept in a local database, by default
~/` + historyBasename + `, which the history sub-command displays.
`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if configPath == "" {
			return nil
		}

		return LoadConfig(configPath, cmd.Flags())
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen once to
// the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		die(err)
	}
}

// SetRepoLogger sets the logger that the repository adapter will log failed
// deposits to.
func SetRepoLogger(logger zerolog.Logger) {
	repoLogger = logger
}

func init() {
	// set up logging to stderr
	appLogger.SetHandler(log15.LvlFilterHandler(log15.LvlInfo, log15.StderrHandler))

	// global flags
	RootCmd.PersistentFlags().StringVar(&serverURL, serverURLFlag, envOrDefault(serverURLEnvKey, defaultServerURL),
		"Digital Commons Data server URL")
	RootCmd.PersistentFlags().StringVar(&token, tokenFlag, os.Getenv(tokenEnvKey),
		"Digital Commons Data API access token")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv(configEnvKey),
		"path to a JSON config file")
	RootCmd.PersistentFlags().StringVar(&historyPath, historyFlag, envOrDefault(historyEnvKey, defaultHistoryPath()),
		"path to the deposit history database")
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

// defaultHistoryPath returns the path to our history database in the user's
// home directory, or "" if that can't be determined.
func defaultHistoryPath() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, historyBasename)
}

// cliPrintf outputs the message to STDOUT.
func cliPrintf(msg string, a ...interface{}) {
	fmt.Fprintf(os.Stdout, msg, a...)
}

// info is a convenience to log a message at the Info level.
func info(msg string, a ...interface{}) {
	appLogger.Info(fmt.Sprintf(msg, a...))
}

// warn is a convenience to log a message at the Warn level.
func warn(msg string, a ...interface{}) {
	appLogger.Warn(fmt.Sprintf(msg, a...))
}

// die is a convenience to log a message at the Error level and exit non zero.
func die(err error) {
	appLogger.Error(err.Error())
	os.Exit(1)
}

// dief is a convenience to log a message at the Error level and exit non zero.
func dief(msg string, a ...interface{}) {
	appLogger.Error(fmt.Sprintf(msg, a...))
	os.Exit(1)
}
