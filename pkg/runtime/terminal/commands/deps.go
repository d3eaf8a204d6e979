package commands

import (
	"github.com/de-tools/industry-reports/pkg/runtime/terminal/export"
	"github.com/de-tools/industry-reports/pkg/services/manage"
)

// Deps is filled in by the root command before any subcommand runs.
type Deps struct {
	Manager  *manage.Manager
	Reporter *export.Reporter
}
