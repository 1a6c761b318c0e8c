package enums

// ImportRowStatus is the outcome recorded per bulk-import row.
type ImportRowStatus string

const (
	ImportRowCreated ImportRowStatus = "created"
	ImportRowUpdated ImportRowStatus = "updated"
	ImportRowFailed  ImportRowStatus = "failed"
)

// String implements fmt.Stringer.
func (s ImportRowStatus) String() string {
	return string(s)
}
