package capture

// FakeSource is a test double that delivers scripted trains.
type FakeSource struct {
	ch chan Train

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeSource creates a FakeSource that has the given trains queued.
// The channel stays open so a consumer blocks once they are drained.
func NewFakeSource(trains ...Train) *FakeSource {
	f := &FakeSource{ch: make(chan Train, len(trains)+trainBuffer)}
	for _, t := range trains {
		f.ch <- t
	}
	return f
}

// Send queues another train.
func (f *FakeSource) Send(t Train) {
	f.ch <- t
}

// End closes the train channel, as a source does when it stops.
func (f *FakeSource) End() {
	close(f.ch)
}

// Trains returns the scripted train channel.
func (f *FakeSource) Trains() <-chan Train {
	return f.ch
}

// Close marks the source as closed.
func (f *FakeSource) Close() error {
	f.Closed = true
	return nil
}
