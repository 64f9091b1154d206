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

package dcd

import (
	"strings"
	"testing"
	"unicode/utf8"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTruncateBody(t *testing.T) {
	Convey("truncateBody limits bodies to the given number of bytes", t, func() {
		So(truncateBody("short", 10), ShouldEqual, "short")
		So(truncateBody("exactly10!", 10), ShouldEqual, "exactly10!")
		So(truncateBody("more than ten", 10), ShouldEqual, "more than ")

		Convey("without splitting multi-byte runes", func() {
			body := strings.Repeat("a", maxErrBodySize-1) + "é" + "tail"

			truncated := truncateBody(body, maxErrBodySize)
			So(len(truncated), ShouldEqual, maxErrBodySize-1)
			So(utf8.ValidString(truncated), ShouldBeTrue)

			truncated = truncateBody("日本語", 4)
			So(truncated, ShouldEqual, "日")
			So(utf8.ValidString(truncated), ShouldBeTrue)
		})
	})
}
