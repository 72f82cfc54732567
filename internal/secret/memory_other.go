//go:build !unix

package secret

import "errors"

func lock(_ []byte) error { return errors.ErrUnsupported }

func unlock(_ []byte) {}
