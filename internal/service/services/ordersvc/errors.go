package ordersvc

// StorageError wraps an infrastructure failure from one of the backing
// stores. Callers may retry; the order placement itself has already been
// rolled back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage failure: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
