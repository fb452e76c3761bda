package convention

import (
	"strconv"
	"strings"

	"accessor-compiler/metadata"
)

// Features is a set of capabilities a binding or node offers to the UI.
type Features int

const (
	FeatureNone        Features = 0
	FeatureCanGoToEdit Features = 1 << (iota - 1)
	FeatureCanView
	FeatureCanEdit
)

var featureNames = []struct {
	flag Features
	name string
}{
	{FeatureCanGoToEdit, "CanGoToEdit"},
	{FeatureCanView, "CanView"},
	{FeatureCanEdit, "CanEdit"},
}

// Has reports whether every feature in other is set in f.
func (f Features) Has(other Features) bool {
	return f&other == other
}

func (f Features) String() string {
	if f == FeatureNone {
		return "None"
	}

	var parts []string

	for _, fn := range featureNames {
		if f.Has(fn.flag) {
			parts = append(parts, fn.name)
			f &^= fn.flag
		}
	}

	if f != 0 {
		parts = append(parts, "Features("+strconv.Itoa(int(f))+")")
	}

	return strings.Join(parts, "|")
}

// FeaturesOf returns the features of a bound field: every binding can be
// viewed, writable properties can be edited too.
func FeaturesOf(meta metadata.Expression) Features {
	if w, ok := meta.(interface{ IsWritable() bool }); ok && w.IsWritable() {
		return FeatureCanView | FeatureCanEdit
	}

	return FeatureCanView
}

// NodeEditor is the convention based editor of a whole entity node.
type NodeEditor struct {
	AllowsNodeEditing bool
}

// Features reports FeatureCanEdit when node editing is allowed.
func (n NodeEditor) Features() Features {
	if n.AllowsNodeEditing {
		return FeatureCanEdit
	}

	return FeatureNone
}
