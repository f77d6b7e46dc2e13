package io

// Temporary implements a bounded FIFO of machine words.
// Values are received in the order they were sent.
type Temporary struct {
	Capacity int // Capacity in words.

	ReadIndex  int
	WriteIndex int
	Size       int
	Data       []int32
}

var _ Channel = (*Temporary)(nil)

// NewTemporary creates a queue of the given capacity, pre-filled with values.
func NewTemporary(capacity int, values ...int32) (temp *Temporary) {
	temp = &Temporary{Capacity: max(capacity, len(values))}
	temp.Rewind()

	for _, value := range values {
		temp.Send(value)
	}

	return
}

// Rewind resets the queue to empty, resetting indices and
// reinitializing the data buffer.
func (temp *Temporary) Rewind() {
	temp.ReadIndex = 0
	temp.WriteIndex = 0
	temp.Size = 0
	temp.Data = make([]int32, temp.Capacity)
}

// Receive returns the oldest value in the queue.
// Returns ErrChannelEmpty if there is nothing to read.
func (temp *Temporary) Receive() (value int32, err error) {
	if temp.Size == 0 {
		err = ErrChannelEmpty
		return
	}

	value = temp.Data[temp.ReadIndex]
	temp.ReadIndex++
	if temp.ReadIndex == temp.Capacity {
		temp.ReadIndex = 0
	}
	temp.Size--

	return
}

// Send appends a value at the current write position.
// Returns ErrChannelFull if the buffer has reached capacity.
func (temp *Temporary) Send(value int32) (err error) {
	if temp.Size >= temp.Capacity {
		err = ErrChannelFull
		return
	}

	temp.Data[temp.WriteIndex] = value

	temp.WriteIndex++
	if temp.WriteIndex == temp.Capacity {
		temp.WriteIndex = 0
	}
	temp.Size++

	return
}

// Values returns the queued values, oldest first, without consuming them.
func (temp *Temporary) Values() (values []int32) {
	for n := range temp.Size {
		values = append(values, temp.Data[(temp.ReadIndex+n)%temp.Capacity])
	}

	return
}
