package engines

import (
	"github.com/reusee/dscope"
	"github.com/reusee/rlm/configs"
	"github.com/reusee/rlm/generators"
	"github.com/reusee/rlm/leaves"
	"github.com/reusee/rlm/logs"
	"github.com/reusee/rlm/metrics"
	"github.com/reusee/rlm/planners"
	"github.com/reusee/rlm/sandboxes"
)

type Module struct {
	dscope.Module
	Configs    configs.Module
	Generators generators.Module
	Leaves     leaves.Module
	Logs       logs.Module
	Metrics    metrics.Module
	Planners   planners.Module
	Sandboxes  sandboxes.Module
}
