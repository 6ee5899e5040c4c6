package app

import (
	"github.com/vk/rulegridgo/internal/registry"
	"github.com/vk/rulegridgo/modules/attribute"
	"github.com/vk/rulegridgo/modules/datatype"
	"github.com/vk/rulegridgo/modules/mapping"
	"github.com/vk/rulegridgo/modules/operation"
	"github.com/vk/rulegridgo/modules/typeprofile"
)

// coreModules is the definitive list of all rule modules that are compiled
// into the rulegrid binary.
var coreModules = []registry.Module{
	&attribute.Module{},
	&datatype.Module{},
	&typeprofile.Module{},
	&operation.Module{},
	&mapping.Module{},
}
