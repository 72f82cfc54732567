// Package policy decides whether a requesting client may receive the secret.
//
// Checks run in a fixed order: the deny-list wins over the allow-list, and the
// allow-list wins over asking the user. An identity present in both lists is
// therefore always denied, and an unresolved identity is never allowed without
// asking.
package policy

import "slices"

// Decision is the disposition for a single selection request.
type Decision int

const (
	// Continue refuses the current request without remembering the requestor.
	Continue Decision = iota
	// Share discloses the secret to the requestor and ends the run.
	Share
	// Clear ends the run without disclosing anything.
	Clear
	// Reject refuses the request and adds the requestor to the deny-list.
	Reject
)

func (d Decision) String() string {
	switch d {
	case Share:
		return "share"
	case Clear:
		return "clear"
	case Reject:
		return "reject"
	default:
		return "continue"
	}
}

// ParseDecision maps an action key back to a Decision. Unknown keys yield
// Continue.
func ParseDecision(s string) Decision {
	switch s {
	case "share":
		return Share
	case "clear":
		return Clear
	case "reject":
		return Reject
	default:
		return Continue
	}
}

// Request describes a requestor to whoever has to make a decision about it.
type Request struct {
	// Identity is the executable path of the requesting process. Only
	// meaningful when Known is true.
	Identity string
	Known    bool

	// Title is the requestor window's title, possibly empty.
	Title string

	// Target is the name of the requested content type.
	Target string

	// Requestor is the X11 window id of the requestor.
	Requestor uint32
}

// Describe returns the identity, or a placeholder when it is unknown.
func (r Request) Describe() string {
	if !r.Known || r.Identity == "" {
		return "unknown process"
	}
	return r.Identity
}

// Lists holds the allow- and deny-lists for a single run. The allow-list is
// fixed at construction; the deny-list only ever grows.
type Lists struct {
	allow []string
	deny  []string
}

// NewLists copies allow and deny into a new Lists. Duplicate deny entries are
// collapsed.
func NewLists(allow, deny []string) *Lists {
	l := &Lists{allow: slices.Clone(allow)}
	for _, id := range deny {
		l.Deny(id)
	}
	return l
}

// Allowed reports whether identity is on the allow-list.
func (l *Lists) Allowed(identity string) bool {
	return slices.Contains(l.allow, identity)
}

// Denied reports whether identity is on the deny-list.
func (l *Lists) Denied(identity string) bool {
	return slices.Contains(l.deny, identity)
}

// Deny appends identity to the deny-list. It reports whether the list grew.
func (l *Lists) Deny(identity string) bool {
	if l.Denied(identity) {
		return false
	}
	l.deny = append(l.deny, identity)
	return true
}

// DenyList returns a copy of the current deny-list in insertion order.
func (l *Lists) DenyList() []string { return slices.Clone(l.deny) }

// AllowList returns a copy of the allow-list.
func (l *Lists) AllowList() []string { return slices.Clone(l.allow) }

// Decide returns the disposition for a request from identity. known is false
// when the identity could not be resolved, in which case neither list is
// consulted. ask is only invoked when the lists do not settle the matter; a
// nil ask behaves like a prompt that was dismissed.
//
// When the outcome is Reject and the identity is known, it is appended to the
// deny-list so later requests from it are refused without asking.
func (l *Lists) Decide(identity string, known bool, ask func() Decision) Decision {
	if known {
		if l.Denied(identity) {
			return Reject
		}
		if l.Allowed(identity) {
			return Share
		}
	}

	d := Continue
	if ask != nil {
		d = ask()
	}
	if d == Reject && known {
		l.Deny(identity)
	}
	return d
}
