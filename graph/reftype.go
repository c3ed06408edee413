package graph

import "fmt"

// RefType selects assets by the shape of their references.
type RefType int

const (
	// RefNone applies no reference filter.
	RefNone RefType = iota
	// RefNoOutgoing selects assets that reference nothing.
	RefNoOutgoing
	// RefNoIncoming selects assets nothing references.
	RefNoIncoming
	// RefIsolated selects assets with neither outgoing nor incoming references.
	RefIsolated
)

var refTypeNames = map[RefType]string{
	RefNone:       "none",
	RefNoOutgoing: "no-outgoing",
	RefNoIncoming: "no-incoming",
	RefIsolated:   "isolated",
}

func (r RefType) String() string {
	if name, ok := refTypeNames[r]; ok {
		return name
	}
	return fmt.Sprintf("RefType(%d)", int(r))
}

// ParseRefType converts a name such as "no-incoming" to a RefType. The empty
// string parses as RefNone.
func ParseRefType(s string) (RefType, error) {
	if s == "" {
		return RefNone, nil
	}
	for r, name := range refTypeNames {
		if name == s {
			return r, nil
		}
	}
	return RefNone, fmt.Errorf("unknown reference type %q (want none, no-outgoing, no-incoming or isolated)", s)
}
