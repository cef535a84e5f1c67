package book

// Status is the circulation state of a BookInstance.
type Status string

const (
	StatusAvailable   Status = "Available"
	StatusMaintenance Status = "Maintenance"
	StatusLoaned      Status = "Loaned"
	StatusReserved    Status = "Reserved"
)

// DefaultStatus applies when a copy is submitted without a status.
const DefaultStatus = StatusMaintenance

// Statuses lists every status in display order.
func Statuses() []Status {
	return []Status{StatusAvailable, StatusMaintenance, StatusLoaned, StatusReserved}
}

// StatusNames returns the statuses as plain strings, for form validation.
func StatusNames() []string {
	names := make([]string, 0, 4)
	for _, s := range Statuses() {
		names = append(names, string(s))
	}
	return names
}

func (s Status) String() string { return string(s) }

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusMaintenance, StatusLoaned, StatusReserved:
		return true
	}
	return false
}

// DueBackApplies is false for available copies: a due date only means
// something while the copy is out of circulation.
func (s Status) DueBackApplies() bool {
	return s != StatusAvailable
}
