package mqtt

import "log"

// queuedMsg is a serialized message held until the broker is reachable.
type queuedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// offlineQueue keeps the most recent messages published while disconnected.
// When full, the oldest message is overwritten.
// Not safe for concurrent use; the caller must synchronize.
type offlineQueue struct {
	buf     []queuedMsg
	next    int // next write position
	count   int
	dropped int // messages overwritten since the last drain
}

func newOfflineQueue(capacity int) *offlineQueue {
	return &offlineQueue{buf: make([]queuedMsg, capacity)}
}

func (q *offlineQueue) push(msg queuedMsg) {
	capacity := len(q.buf)
	if q.count == capacity {
		if q.dropped == 0 {
			log.Printf("mqtt: offline queue full (%d messages), dropping oldest", capacity)
		}
		q.dropped++
	} else {
		q.count++
	}
	q.buf[q.next] = msg
	q.next = (q.next + 1) % capacity
}

// drain returns queued messages oldest first and empties the queue.
func (q *offlineQueue) drain() []queuedMsg {
	if q.count == 0 {
		return nil
	}

	capacity := len(q.buf)
	out := make([]queuedMsg, q.count)
	start := (q.next - q.count + capacity) % capacity
	for i := range out {
		out[i] = q.buf[(start+i)%capacity]
	}

	if q.dropped > 0 {
		log.Printf("mqtt: %d queued messages were dropped while offline", q.dropped)
	}
	q.next, q.count, q.dropped = 0, 0, 0
	return out
}

func (q *offlineQueue) len() int {
	return q.count
}
