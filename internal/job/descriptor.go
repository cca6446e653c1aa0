package job

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/parsegrid/internal/parser"
)

// Descriptor is one validated unit of work.
type Descriptor struct {
	Index      int
	Source     string
	Origin     string
	Destiny    string
	Operation  string
	ParserType string
	Options    parser.Options
}

// ID returns a short identity used in logs and reports.
func (d *Descriptor) ID() string {
	return fmt.Sprintf("#%d %s.%s", d.Index, d.ParserType, d.Operation)
}

// Definition is an ordered list of descriptors.
type Definition struct {
	Transformations []*Descriptor
}

// Len returns the number of transformations in the definition.
func (d *Definition) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Transformations)
}

// s3Scheme is the prefix of object store locators in origin and destiny.
const s3Scheme = "s3://"

// LocalPath maps an object store locator ("s3://bucket/key") to its local
// mirror path ("s3/bucket/key"). Other locations are returned unchanged.
func LocalPath(location string) string {
	if strings.HasPrefix(location, s3Scheme) {
		return "s3/" + strings.TrimPrefix(location, s3Scheme)
	}
	return location
}
