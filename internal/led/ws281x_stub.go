//go:build !pi

package led

import "errors"

func (w *WS281x) Open(pin, count int) (Driver, error) {
	return nil, errors.New("ws281x driver not compiled in this build (use -tags pi)")
}
