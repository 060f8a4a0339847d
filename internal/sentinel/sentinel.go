package sentinel

var _ error = Error("")

// Error is a string-backed error usable in const declarations.
// Two Error values are equal when their text is equal, which is all
// errors.Is needs to match them through fmt.Errorf("%w") chains.
type Error string

func (e Error) Error() string {
	return string(e)
}
