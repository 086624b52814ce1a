// Package label derives the connector lines and square markers that place
// small-country labels away from their true location.
package label

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// OffsetClass is the direction a country's marker is pushed from its centroid.
type OffsetClass int

// Offset classes, in the priority order memberships are checked when building
// a Classifier.
const (
	UpRight OffsetClass = iota + 1
	DownRight
	UpLeft
	DownLeft
)

// Classes lists every offset class in priority order.
var Classes = []OffsetClass{UpRight, DownRight, UpLeft, DownLeft}

var classNames = map[OffsetClass]string{
	UpRight:   "up_right",
	DownRight: "down_right",
	UpLeft:    "up_left",
	DownLeft:  "down_left",
}

func (c OffsetClass) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseClass maps a config name such as "up_right" or "UP_RIGHT" to its class.
func ParseClass(name string) (OffsetClass, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for c, cn := range classNames {
		if cn == n {
			return c, nil
		}
	}
	return 0, eris.Errorf("label: unknown offset class %q", name)
}

// Offset is a displacement in degrees.
type Offset struct {
	DX float64
	DY float64
}

// DefaultOffsets are the displacements the quiz map is calibrated against.
var DefaultOffsets = map[OffsetClass]Offset{
	UpRight:   {DX: 5, DY: 5},
	DownRight: {DX: 5, DY: -5},
	UpLeft:    {DX: -5, DY: 5},
	DownLeft:  {DX: -5, DY: -5},
}

// DefaultMembers assigns the island and enclave states of Africa whose own
// outline is too small to tap.
var DefaultMembers = map[OffsetClass][]string{
	UpRight:   {"KM", "SC"},
	DownRight: {},
	UpLeft:    {"CV"},
	DownLeft:  {"GQ", "GM", "ST", "MU"},
}

// Classifier resolves a country code to its offset class and displacement.
type Classifier struct {
	classes map[string]OffsetClass
	offsets map[OffsetClass]Offset
}

// NewClassifier builds the code lookup from per-class membership lists. A code
// listed under two classes, or a class with members but no offset, is an error.
func NewClassifier(members map[OffsetClass][]string, offsets map[OffsetClass]Offset) (*Classifier, error) {
	c := &Classifier{
		classes: make(map[string]OffsetClass),
		offsets: make(map[OffsetClass]Offset, len(offsets)),
	}
	for class, off := range offsets {
		c.offsets[class] = off
	}

	for class := range members {
		if _, ok := classNames[class]; !ok {
			return nil, eris.Errorf("label: unknown offset class %d", int(class))
		}
	}

	var conflicts []string
	for _, class := range Classes {
		codes := members[class]
		if len(codes) == 0 {
			continue
		}
		if _, ok := c.offsets[class]; !ok {
			return nil, eris.Errorf("label: class %s has members but no offset", class)
		}
		for _, code := range codes {
			code = normalizeCode(code)
			if code == "" {
				continue
			}
			if prev, ok := c.classes[code]; ok && prev != class {
				conflicts = append(conflicts, code+" in "+prev.String()+" and "+class.String())
				continue
			}
			c.classes[code] = class
		}
	}

	if len(conflicts) > 0 {
		sort.Strings(conflicts)
		return nil, eris.Errorf("label: codes assigned to more than one class: %s", strings.Join(conflicts, "; "))
	}
	return c, nil
}

// ParseClassifier builds a Classifier from the name-keyed maps of the config file.
func ParseClassifier(members map[string][]string, offsets map[string][]float64) (*Classifier, error) {
	typedOffsets := make(map[OffsetClass]Offset, len(offsets))
	for name, v := range offsets {
		class, err := ParseClass(name)
		if err != nil {
			return nil, err
		}
		if len(v) != 2 {
			return nil, eris.Errorf("label: offset %s must be [dx, dy]", name)
		}
		typedOffsets[class] = Offset{DX: v[0], DY: v[1]}
	}

	typedMembers := make(map[OffsetClass][]string, len(members))
	for name, codes := range members {
		class, err := ParseClass(name)
		if err != nil {
			return nil, err
		}
		typedMembers[class] = codes
	}

	return NewClassifier(typedMembers, typedOffsets)
}

// DefaultClassifier returns the classifier built from DefaultMembers and
// DefaultOffsets.
func DefaultClassifier() *Classifier {
	c, err := NewClassifier(DefaultMembers, DefaultOffsets)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the class and displacement assigned to code.
func (c *Classifier) Lookup(code string) (OffsetClass, Offset, bool) {
	class, ok := c.classes[normalizeCode(code)]
	if !ok {
		return 0, Offset{}, false
	}
	return class, c.offsets[class], true
}

// Len is the number of classified codes.
func (c *Classifier) Len() int {
	return len(c.classes)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
