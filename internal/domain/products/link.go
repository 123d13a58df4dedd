package products

import (
	"fmt"
	"strconv"
	"strings"
)

// PartLink is a named edge from a parent type to a shared child type.
type PartLink interface {
	Link() *LinkBase
	Kind() string
}

type LinkBase struct {
	ID      int64
	Role    string
	Parent  ProductType
	Product ProductType
}

func (l *LinkBase) Link() *LinkBase { return l }

// SimpleLink carries topology only.
type SimpleLink struct {
	LinkBase
}

const KindSimpleLink = "SimpleLink"

func (*SimpleLink) Kind() string { return KindSimpleLink }

func NewSimpleLink(role string, child ProductType) *SimpleLink {
	return &SimpleLink{LinkBase: LinkBase{Role: role, Product: child}}
}

// IndexedRole renders the role used for the i-th entry of a link list.
func IndexedRole(prefix string, i int) string {
	return fmt.Sprintf("%s[%d]", prefix, i)
}

// ParseIndexedRole reports the index of a role rendered by IndexedRole.
func ParseIndexedRole(prefix, role string) (int, bool) {
	rest, ok := strings.CutPrefix(role, prefix+"[")
	if !ok {
		return 0, false
	}
	digits, ok := strings.CutSuffix(rest, "]")
	if !ok || digits == "" {
		return 0, false
	}
	i, err := strconv.Atoi(digits)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}
