package capability

import "strings"

// Kind names one optional capability
type Kind uint16

const (
	KindTitle Kind = 1 << iota
	KindEmoji
	KindWrap
	KindProgress
	KindPause
	KindPriority
	KindDependency
	KindFailure
	KindStatus
	KindStatistics
	KindPersistence
)

var kindNames = []struct {
	kind Kind
	name string
}{
	{KindTitle, "title"},
	{KindEmoji, "emoji"},
	{KindWrap, "wrap"},
	{KindProgress, "progress"},
	{KindPause, "pause"},
	{KindPriority, "priority"},
	{KindDependency, "dependency"},
	{KindFailure, "failure"},
	{KindStatus, "status"},
	{KindStatistics, "statistics"},
	{KindPersistence, "persistence"},
}

// String returns the capability name, or a "+"-joined list for a set
func (k Kind) String() string {
	var parts []string
	for _, kn := range kindNames {
		if k&kn.kind != 0 {
			parts = append(parts, kn.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// Set is an immutable bitmask of capability kinds
type Set Kind

// Has reports whether every kind in k is present
func (s Set) Has(k Kind) bool {
	return Kind(s)&k == k
}

// Kinds lists the members in declaration order
func (s Set) Kinds() []Kind {
	var out []Kind
	for _, kn := range kindNames {
		if Kind(s)&kn.kind != 0 {
			out = append(out, kn.kind)
		}
	}
	return out
}

func (s Set) String() string { return Kind(s).String() }
