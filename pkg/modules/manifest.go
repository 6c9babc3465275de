// Package modules is the static manifest of shipped shell modules.
package modules

import (
	"github.com/siptools/sipcli/pkg/modules/database"
	"github.com/siptools/sipcli/pkg/modules/instance"
	"github.com/siptools/sipcli/pkg/modules/mi"
	"github.com/siptools/sipcli/pkg/shell"
)

// Manifest returns the module entries the loader validates at startup.
func Manifest() []shell.Entry {
	return []shell.Entry{
		{Name: "mi", New: mi.New},
		{Name: "database", New: database.New},
		{Name: "instance", New: instance.New},
	}
}
