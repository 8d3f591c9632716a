// SPDX-License-Identifier: MPL-2.0

package pkginfo

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/appkg/appkg/pkg/cueutil"
)

// PropertyFileName is the optional runtime property document of a package.
const PropertyFileName = "property.json"

//go:embed property_schema.cue
var propertySchema []byte

// ErrInvalidProperty is the sentinel wrapped by PropertyError.
var ErrInvalidProperty = errors.New("invalid property document")

type (
	// PropertyError reports a property.json that failed its structural checks.
	PropertyError struct {
		Dir string
		Err error
	}

	propertyFields struct {
		Runtime *struct {
			PredefinedGraphs []struct {
				Name  string `json:"name"`
				Nodes []struct {
					Name string `json:"name"`
					App  string `json:"app,omitempty"`
				} `json:"nodes,omitempty"`
			} `json:"predefined_graphs,omitempty"`
		} `json:"runtime,omitempty"`
	}
)

func (e *PropertyError) Error() string {
	return fmt.Sprintf("invalid %s in %s: %v", PropertyFileName, e.Dir, e.Err)
}

// Unwrap returns both the sentinel and the underlying cause.
func (e *PropertyError) Unwrap() []error { return []error{ErrInvalidProperty, e.Err} }

// CheckPropertyDocument validates dir/property.json. A package without one is valid.
func CheckPropertyDocument(dir string) error {
	path := filepath.Join(dir, PropertyFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &PropertyError{Dir: dir, Err: err}
	}

	res, err := cueutil.ParseAndDecode[propertyFields](propertySchema, data, "#Property", cueutil.WithFilename(path))
	if err != nil {
		return &PropertyError{Dir: dir, Err: err}
	}
	if err := checkGraphNames(res.Value); err != nil {
		return &PropertyError{Dir: dir, Err: err}
	}
	return nil
}

// checkGraphNames enforces the uniqueness rules the schema cannot express:
// graph names are unique, and node names are unique per app within a graph.
func checkGraphNames(p *propertyFields) error {
	if p.Runtime == nil {
		return nil
	}

	graphs := make(map[string]int)
	for i, g := range p.Runtime.PredefinedGraphs {
		if first, dup := graphs[g.Name]; dup {
			return fmt.Errorf("runtime.predefined_graphs[%d]: duplicate graph name %q (same as predefined_graphs[%d])", i, g.Name, first)
		}
		graphs[g.Name] = i

		nodes := make(map[string]bool)
		for j, n := range g.Nodes {
			key := n.App + "/" + n.Name
			if nodes[key] {
				return fmt.Errorf("runtime.predefined_graphs[%d].nodes[%d]: duplicate node %q in graph %q", i, j, n.Name, g.Name)
			}
			nodes[key] = true
		}
	}
	return nil
}
