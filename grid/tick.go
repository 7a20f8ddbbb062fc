package grid

// Tick is polled by long loops with the items done so far and the total.
// A non-nil error stops the loop and is returned by it.
type Tick func(done, total int) error

// tickEvery is how many items pass between polls.
const tickEvery = 256

// At polls t on the first item and then every tickEvery items. A nil Tick
// never stops anything.
func (t Tick) At(done, total int) error {
	if t == nil || done%tickEvery != 0 {
		return nil
	}
	return t(done, total)
}
