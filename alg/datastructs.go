package alg

// StackArray is a stack of token indices backed by a plain slice.
// Index 0 is the top of the stack.
type StackArray struct {
	Array []int
}

func (s *StackArray) Clear() {
	s.Array = s.Array[0:0]
}

func (s *StackArray) Push(val int) {
	s.Array = append(s.Array, val)
}

func (s *StackArray) Pop() (int, bool) {
	if s.Size() == 0 {
		return 0, false
	}
	retval := s.Array[len(s.Array)-1]
	s.Array = s.Array[:len(s.Array)-1]
	return retval, true
}

// Remove deletes the element at depth index (0 is the top).
func (s *StackArray) Remove(index int) (int, bool) {
	if index < 0 || index >= s.Size() {
		return 0, false
	}
	pos := len(s.Array) - 1 - index
	retval := s.Array[pos]
	copy(s.Array[pos:], s.Array[pos+1:])
	s.Array = s.Array[:len(s.Array)-1]
	return retval, true
}

func (s *StackArray) Index(index int) (int, bool) {
	if index < 0 || index >= s.Size() {
		return 0, false
	}
	return s.Array[len(s.Array)-1-index], true
}

func (s *StackArray) Peek() (int, bool) {
	return s.Index(0)
}

func (s *StackArray) Size() int {
	return len(s.Array)
}

// CopyTo copies the stack into target, reusing target's backing array
// when it is large enough.
func (s *StackArray) CopyTo(target *StackArray) {
	if cap(target.Array) < len(s.Array) {
		target.Array = make([]int, len(s.Array), cap(s.Array))
	} else {
		target.Array = target.Array[:len(s.Array)]
	}
	copy(target.Array, s.Array)
}

func (s *StackArray) Equal(other *StackArray) bool {
	if s.Size() != other.Size() {
		return false
	}
	for i, v := range s.Array {
		if other.Array[i] != v {
			return false
		}
	}
	return true
}

func NewStackArray(size int) *StackArray {
	return &StackArray{make([]int, 0, size)}
}

// QueueSlice is a FIFO of token indices. Dequeue advances a front offset
// instead of reslicing, so the backing array is never reallocated.
type QueueSlice struct {
	slice []int
	front int
}

func (q *QueueSlice) Clear() {
	q.slice = q.slice[0:0]
	q.front = 0
}

func (q *QueueSlice) Enqueue(val int) {
	q.slice = append(q.slice, val)
}

func (q *QueueSlice) Dequeue() (int, bool) {
	if q.Size() == 0 {
		return 0, false
	}
	retval := q.slice[q.front]
	q.front++
	return retval, true
}

func (q *QueueSlice) Index(index int) (int, bool) {
	if index < 0 || index >= q.Size() {
		return 0, false
	}
	return q.slice[q.front+index], true
}

func (q *QueueSlice) Peek() (int, bool) {
	return q.Index(0)
}

func (q *QueueSlice) Size() int {
	return len(q.slice) - q.front
}

func (q *QueueSlice) CopyTo(target *QueueSlice) {
	remaining := q.slice[q.front:]
	if cap(target.slice) < len(remaining) {
		target.slice = make([]int, len(remaining))
	} else {
		target.slice = target.slice[:len(remaining)]
	}
	copy(target.slice, remaining)
	target.front = 0
}

func (q *QueueSlice) Equal(other *QueueSlice) bool {
	if q.Size() != other.Size() {
		return false
	}
	for i := 0; i < q.Size(); i++ {
		a, _ := q.Index(i)
		b, _ := other.Index(i)
		if a != b {
			return false
		}
	}
	return true
}

func NewQueueSlice(size int) *QueueSlice {
	return &QueueSlice{make([]int, 0, size), 0}
}
