package hosts

import "fmt"

// Kind classifies the result of an update.
type Kind int

const (
	// Unchanged means the table already pinned the domain to the address.
	Unchanged Kind = iota
	// Updated means an existing record was rewritten in place.
	Updated
	// Inserted means a new record was appended.
	Inserted
	// Rejected means the address was not a valid IPv4 literal.
	Rejected
)

func (k Kind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case Updated:
		return "updated"
	case Inserted:
		return "inserted"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	kind, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "unchanged":
		return Unchanged, nil
	case "updated":
		return Updated, nil
	case "inserted":
		return Inserted, nil
	case "rejected":
		return Rejected, nil
	}
	return 0, fmt.Errorf("unknown outcome kind %q", s)
}

// Outcome is the descriptive result of Table.Update. None of the kinds are
// errors; I/O failures are returned separately.
type Outcome struct {
	Kind     Kind   `json:"kind"`
	Domain   string `json:"domain"`
	Target   string `json:"target"`
	Previous string `json:"previous,omitempty"`
	Message  string `json:"message"`
}

// OK reports whether the update was accepted.
func (o Outcome) OK() bool {
	return o.Kind != Rejected
}

// Changed reports whether the update wrote to the file.
func (o Outcome) Changed() bool {
	return o.Kind == Updated || o.Kind == Inserted
}

func (o Outcome) String() string {
	return o.Message
}

func rejected(domain, target string) Outcome {
	return Outcome{
		Kind:    Rejected,
		Domain:  domain,
		Target:  target,
		Message: fmt.Sprintf("invalid IPv4 address %q", target),
	}
}

func unchanged(domain, target string) Outcome {
	return Outcome{
		Kind:     Unchanged,
		Domain:   domain,
		Target:   target,
		Previous: target,
		Message:  fmt.Sprintf("domain %s is already correctly resolved to %s, no change needed", domain, target),
	}
}

func changed(kind Kind, domain, target, previous string) Outcome {
	return Outcome{
		Kind:     kind,
		Domain:   domain,
		Target:   target,
		Previous: previous,
		Message:  fmt.Sprintf("domain %s updated to %s", domain, target),
	}
}
