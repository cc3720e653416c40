package memory

// journal collects undo steps for the writes made inside one Backend.Update.
// A nil journal records nothing.
type journal struct {
	undo []func()
}

func (j *journal) record(fn func()) {
	if j == nil {
		return
	}
	j.undo = append(j.undo, fn)
}

// rollback replays the undo steps newest first and empties the journal.
func (j *journal) rollback() {
	if j == nil {
		return
	}
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
	j.undo = nil
}
