package launch

// journal accumulates revert closures for every state write performed during
// a single operation. A late failure unwinds all prior writes in reverse
// order so the operation either commits entirely or leaves no trace.
type journal struct {
	reverts []func() error
}

func (j *journal) record(revert func() error) {
	if revert == nil {
		return
	}
	j.reverts = append(j.reverts, revert)
}

// unwind executes the recorded reverts newest-first. Every revert runs even
// if an earlier one fails; the first failure is returned.
func (j *journal) unwind() error {
	var first error
	for i := len(j.reverts) - 1; i >= 0; i-- {
		if err := j.reverts[i](); err != nil && first == nil {
			first = err
		}
	}
	j.reverts = nil
	return first
}
