//go:build !linux

package selection

func executable(_ string, _ uint32) (string, error) {
	return "", ErrUnsupported
}
