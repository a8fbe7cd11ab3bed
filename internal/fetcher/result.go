package fetcher

// Outcome is the result of one fetch. It is consumed by the coordinator for
// reporting as soon as it is produced and is never persisted.
type Outcome struct {
	Symbol      string
	Destination string

	// Err is nil on success. Otherwise it is a *FetchError describing why the
	// fetch failed. The destination file is not checked either way.
	Err error
}

// OK reports whether the fetch succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}
