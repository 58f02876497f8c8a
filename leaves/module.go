package leaves

import (
	"github.com/reusee/dscope"
	"github.com/reusee/rlm/configs"
	"github.com/reusee/rlm/generators"
	"github.com/reusee/rlm/logs"
	"github.com/reusee/rlm/metrics"
)

type Module struct {
	dscope.Module
	Configs    configs.Module
	Generators generators.Module
	Logs       logs.Module
	Metrics    metrics.Module
}
