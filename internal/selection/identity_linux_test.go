//go:build linux

package selection

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pidMap map[xproto.Window]uint32

func (m pidMap) ClientPID(win xproto.Window) (uint32, error) {
	pid, ok := m[win]
	if !ok {
		return 0, errors.New("BadWindow")
	}
	return pid, nil
}

// fakeProc builds <root>/<pid>/exe symlinks.
func fakeProc(t *testing.T, exes map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for pid, exe := range exes {
		dir := filepath.Join(root, pid)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.Symlink(exe, filepath.Join(dir, "exe")))
	}
	return root
}

func TestProcessIdentifier(t *testing.T) {
	root := fakeProc(t, map[string]string{
		"4242": "/usr/bin/trusted",
		"5151": "/usr/lib/firefox/firefox (deleted)",
	})
	p := &ProcessIdentifier{
		PIDs:     pidMap{0x100: 4242, 0x200: 5151, 0x300: 999, 0x400: 0},
		ProcRoot: root,
	}

	id, err := p.Identify(0x100)
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/trusted", id)

	id, err = p.Identify(0x200)
	require.NoError(t, err)
	assert.Equal(t, "/usr/lib/firefox/firefox (deleted)", id)

	for _, win := range []xproto.Window{0x300, 0x400, 0x500} {
		_, err := p.Identify(win)
		assert.Error(t, err, "window %#x", win)
	}
}

func TestProcessIdentifier_Self(t *testing.T) {
	self, err := os.Executable()
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(self)
	require.NoError(t, err)

	p := &ProcessIdentifier{PIDs: pidMap{0x1: uint32(os.Getpid())}}
	id, err := p.Identify(0x1)
	require.NoError(t, err)
	assert.Equal(t, want, id)
}
