package mocks

// CallLog records arguments of calls to a mock method.
type CallLog[T any] []T

func (l CallLog[T]) Times() uint {
	return uint(len(l))
}
