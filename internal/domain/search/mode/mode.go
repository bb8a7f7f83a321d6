package mode

// Mode is how a card query is executed.
type Mode string

// Search mode constants.
const (
	// List runs the filter predicate alone.
	List Mode = "list"
	// Search also requires the flexible name pattern.
	Search Mode = "search"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == List || m == Search
}
