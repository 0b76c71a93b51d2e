// cmd/boxkit/main_test.go
package main

import (
	"context"
	"io/fs"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetMocks() {
	osWriteFile = os.WriteFile
	osExit = os.Exit
}

func TestHandlePanic(t *testing.T) {
	tests := []struct {
		name      string
		writeErr  error
		wantCode  int
		wantWrite bool
	}{
		{name: "report written", wantCode: 2, wantWrite: true},
		{name: "report not writable", writeErr: fs.ErrPermission, wantCode: 2, wantWrite: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Cleanup(resetMocks)
			var written []byte
			var path string
			osWriteFile = func(name string, data []byte, _ os.FileMode) error {
				path, written = name, data
				return tt.writeErr
			}
			code := -1
			osExit = func(c int) { code = c }

			func() {
				defer handlePanic()
				panic("boom")
			}()

			assert.Equal(t, tt.wantCode, code)
			require.Equal(t, tt.wantWrite, written != nil)
			assert.Equal(t, panicLogFile, path)
			assert.Contains(t, string(written), "panic: boom")
			assert.Contains(t, string(written), "goroutine")
		})
	}

	t.Run("no panic is a no-op", func(t *testing.T) {
		t.Cleanup(resetMocks)
		called := false
		osExit = func(int) { called = true }
		func() {
			defer handlePanic()
		}()
		assert.False(t, called)
	})
}

func TestRunExitCodes(t *testing.T) {
	originalArgs := os.Args
	t.Cleanup(func() { os.Args = originalArgs })

	os.Args = []string{"boxkit", "version"}
	assert.Equal(t, 0, run(context.Background()))

	os.Args = []string{"boxkit", "render"}
	assert.Equal(t, 1, run(context.Background()))
}
