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
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
)

// Config stores the global config for the commands, as read from a JSON file.
var Config struct {
	ServerURL string `json:"server_url"`
	Token     string `json:"token"`
	Timeout   string `json:"timeout"`
	History   string `json:"history"`
}

// requestTimeout is the per-request timeout given to the Digital Commons Data
// client; 0 means its default.
var requestTimeout time.Duration

func newConfig(config string) error {
	f, err := os.Open(config)
	if err != nil {
		return fmt.Errorf("error opening dcdeposit config: %w", err)
	}

	if err = json.NewDecoder(f).Decode(&Config); err != nil {
		f.Close()

		return fmt.Errorf("error parsing dcdeposit config: %w", err)
	}

	return f.Close()
}

// LoadConfig loads global config from the given path. Values in the file are
// only used for options not explicitly set in the given flags.
func LoadConfig(path string, flags *pflag.FlagSet) error {
	if err := newConfig(path); err != nil {
		return err
	}

	setUnlessChanged(flags, serverURLFlag, &serverURL, Config.ServerURL)
	setUnlessChanged(flags, tokenFlag, &token, Config.Token)
	setUnlessChanged(flags, historyFlag, &historyPath, Config.History)

	if Config.Timeout == "" {
		return nil
	}

	timeout, err := time.ParseDuration(Config.Timeout)
	if err != nil {
		return fmt.Errorf("error parsing dcdeposit config timeout: %w", err)
	}

	requestTimeout = timeout

	return nil
}

func setUnlessChanged(flags *pflag.FlagSet, name string, option *string, value string) {
	if value == "" || (flags != nil && flags.Changed(name)) {
		return
	}

	*option = value
}
