/*
Copyright © 2026 Jayson Grace <jayson.e.grace@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

package errors_test

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cowdogmoo/cloudbuild-action/errors"
)

func TestWrap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		action string
		detail string
		err    error
		want   string
	}{
		{
			name:   "archive build",
			action: "create archive",
			detail: "/tmp/work/build.tgz",
			err:    stderrors.New("no space left on device"),
			want:   "failed to create archive (/tmp/work/build.tgz): no space left on device",
		},
		{
			name:   "object upload",
			action: "upload",
			detail: "build.tgz to my-project_cloudbuild/build-1.tgz",
			err:    stderrors.New("googleapi: Error 403: forbidden"),
			want:   "failed to upload (build.tgz to my-project_cloudbuild/build-1.tgz): googleapi: Error 403: forbidden",
		},
		{
			name:   "object delete without detail",
			action: "delete",
			err:    context.DeadlineExceeded,
			want:   "failed to delete: context deadline exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := errors.Wrap(tt.action, tt.detail, tt.err)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestWrap_NilError(t *testing.T) {
	t.Parallel()
	assert.NoError(t, errors.Wrap("delete", "my-bucket/build-1.tgz", nil))
}

func TestWrap_KeepsCauseChain(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "build.tgz")
	_, openErr := os.Open(missing)
	require.Error(t, openErr)

	err := errors.Wrap("upload", missing+" to my-bucket/build-1.tgz", openErr)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	var pathErr *fs.PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, missing, pathErr.Path)
}
