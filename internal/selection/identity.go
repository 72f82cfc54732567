package selection

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

// Identifier maps a requestor window to a stable identity string used for
// policy matching. An error means "identity unknown" and is never fatal.
type Identifier interface {
	Identify(win xproto.Window) (string, error)
}

// PIDResolver maps a window to the pid of the client that owns it.
type PIDResolver interface {
	ClientPID(win xproto.Window) (uint32, error)
}

// ProcessIdentifier identifies requestors by the executable path of their
// owning process.
type ProcessIdentifier struct {
	PIDs PIDResolver

	// ProcRoot is the procfs mount point. Empty means /proc.
	ProcRoot string
}

func (p *ProcessIdentifier) Identify(win xproto.Window) (string, error) {
	pid, err := p.PIDs.ClientPID(win)
	if err != nil {
		return "", fmt.Errorf("client pid of %#x: %w", win, err)
	}
	if pid == 0 {
		return "", fmt.Errorf("client pid of %#x: zero pid", win)
	}

	root := p.ProcRoot
	if root == "" {
		root = "/proc"
	}
	path, err := executable(root, pid)
	if err != nil {
		return "", fmt.Errorf("executable of pid %d: %w", pid, err)
	}
	return path, nil
}
