package common

import "errors"

// ErrModulePaused is returned by Guard while the named module is halted.
var ErrModulePaused = errors.New("module paused")

// PauseView reports whether a module has been administratively halted.
type PauseView interface {
	IsPaused(module string) bool
}

// Guard rejects the operation when the supplied module is paused. A nil view
// or empty module name disables the check.
func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}
