package planners

import (
	"github.com/reusee/dscope"
	"github.com/reusee/rlm/configs"
	"github.com/reusee/rlm/generators"
	"github.com/reusee/rlm/logs"
)

type Module struct {
	dscope.Module
	Configs    configs.Module
	Generators generators.Module
	Logs       logs.Module
}
