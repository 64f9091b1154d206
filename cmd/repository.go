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
	"fmt"
	"net/url"
	"os"
	"os/user"
	"strings"
	"syscall"

	"github.com/wtsi-hgi/dcdeposit/adapter"
	"github.com/wtsi-hgi/dcdeposit/dcd"
	"github.com/wtsi-hgi/dcdeposit/spi"
	"golang.org/x/term"
)

var errNoToken = errors.New("you must supply --token or set " + tokenEnvKey)

// depositor is the local user making deposits.
type depositor struct {
	name  string
	email string
}

func (d depositor) Email() string      { return d.email }
func (d depositor) UniqueName() string { return d.name }

// currentDepositor returns a depositor for the current user, with the given
// email address.
func currentDepositor(email string) depositor {
	return depositor{name: currentUsername(), email: email}
}

func currentUsername() string {
	u, err := user.Current()
	if err != nil {
		return os.Getenv("USER")
	}

	return u.Username
}

// repositoryConfig returns the spi config for our global serverURL and token.
func repositoryConfig(serverURL, token string) (spi.RepositoryConfig, error) {
	u, err := url.Parse(strings.TrimSuffix(serverURL, "/"))
	if err != nil {
		return spi.RepositoryConfig{}, err
	}

	if u.Scheme == "" || u.Host == "" {
		return spi.RepositoryConfig{}, fmt.Errorf("invalid server URL: %s", serverURL)
	}

	return spi.RepositoryConfig{ServerURL: u, Identifier: token, RepoName: adapter.RepoName}, nil
}

// newRepository creates and configures the Digital Commons Data repository
// plugin using the global options, asking for the token if necessary.
func newRepository() (spi.Repository, spi.RepositoryConfig) {
	if token == "" {
		t, err := askForToken()
		if err != nil {
			die(err)
		}

		token = t
	}

	config, err := repositoryConfig(serverURL, token)
	if err != nil {
		die(err)
	}

	repo, err := configureRepository(config)
	if err != nil {
		die(err)
	}

	return repo, config
}

// configureRepository gets the registered Digital Commons Data repository and
// configures it, giving it our repoLogger and a client with our
// requestTimeout.
func configureRepository(config spi.RepositoryConfig) (spi.Repository, error) {
	repo, err := spi.New(adapter.RepoName)
	if err != nil {
		return nil, err
	}

	if err = repo.Configurer().Configure(config); err != nil {
		return nil, err
	}

	if dcdRepo, ok := repo.(*adapter.Repository); ok {
		dcdRepo.SetLogger(repoLogger)

		if requestTimeout > 0 {
			dcdRepo.SetClient(dcd.New(dcd.Config{
				ServerURL: config.ServerURL.String(),
				Token:     config.Identifier,
				Timeout:   requestTimeout,
			}))
		}
	}

	return repo, nil
}

// askForToken reads a token from the terminal without echoing it. Returns an
// error if STDIN is not a terminal.
func askForToken() (string, error) {
	if !term.IsTerminal(syscall.Stdin) {
		return "", errNoToken
	}

	cliPrintf("Digital Commons Data API token: ")

	tokenB, err := term.ReadPassword(syscall.Stdin)

	cliPrintf("\n")

	if err != nil {
		return "", err
	}

	t := strings.TrimSpace(string(tokenB))
	if t == "" {
		return "", errNoToken
	}

	return t, nil
}
