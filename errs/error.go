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

// package errs holds the error types shared by the Digital Commons Data client
// and the repository adapter, and classifies errors into the short "kind"
// names reported back to a host.

package errs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"net/url"
)

// Error kinds, as reported in failed operation results.
const (
	KindHTTPClient    = "HTTPClientError"
	KindHTTPServer    = "HTTPServerError"
	KindHTTP          = "HTTPError"
	KindIO            = "IOError"
	KindTransport     = "TransportError"
	KindNotConfigured = "NotConfiguredError"
	KindInvalid       = "InvalidRequestError"
	KindUnexpected    = "UnexpectedError"
)

// Kinder is implemented by errors that know their own kind.
type Kinder interface {
	Kind() string
}

// ErrNotConfigured is returned when an operation needing a remote client is
// attempted before one has been configured.
var ErrNotConfigured = errors.New("repository has not been configured")

// StatusError is returned when the remote service responds with a non-2xx
// status code.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.Code, http.StatusText(e.Code))

	if e.Body != "" {
		return msg + " [" + e.Body + "]"
	}

	return msg
}

// Is lets errors.Is() match any StatusError with the same Code.
func (e *StatusError) Is(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == e.Code
	}

	return false
}

// Kind returns KindHTTPClient for 4xx codes and KindHTTPServer for 5xx codes.
func (e *StatusError) Kind() string {
	switch {
	case e.Code >= http.StatusBadRequest && e.Code < http.StatusInternalServerError:
		return KindHTTPClient
	case e.Code >= http.StatusInternalServerError:
		return KindHTTPServer
	}

	return KindHTTP
}

// PathError describes a problem with a local path.
type PathError struct {
	Msg  string
	Path string
}

func (e PathError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s [%s]", e.Msg, e.Path)
	}

	return e.Msg
}

func (e PathError) Is(err error) bool {
	var pathErr PathError
	if errors.As(err, &pathErr) {
		return pathErr.Msg == e.Msg
	}

	return false
}

// Kind classifies the given error into one of our Kind* constants. Returns ""
// for a nil error.
func Kind(err error) string {
	if err == nil {
		return ""
	}

	var (
		kinder  Kinder
		fsErr   *fs.PathError
		pathErr PathError
		urlErr  *url.Error
		netErr  net.Error
	)

	switch {
	case errors.As(err, &kinder):
		return kinder.Kind()
	case errors.Is(err, ErrNotConfigured):
		return KindNotConfigured
	case errors.As(err, &fsErr), errors.As(err, &pathErr),
		errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, fs.ErrNotExist):
		return KindIO
	case errors.As(err, &urlErr), errors.As(err, &netErr):
		return KindTransport
	}

	return KindUnexpected
}
