package fetcher

var _ error = (*Error)(nil)

// Error is a fetcher error.
type Error string

// Error implements the error interface.
func (e Error) Error() string {
	return string(e)
}
