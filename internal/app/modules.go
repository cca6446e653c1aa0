package app

import (
	"github.com/specialistvlad/parsegrid/internal/registry"
	"github.com/specialistvlad/parsegrid/modules/xmlcsv"
	"github.com/specialistvlad/parsegrid/modules/zipfile"
)

// coreModules is the definitive list of parser constructors compiled into
// the parsegrid binary. Manifests can only bind to these.
var coreModules = []registry.Module{
	&zipfile.Module{},
	&xmlcsv.Module{},
}
