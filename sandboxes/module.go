package sandboxes

import (
	"github.com/reusee/dscope"
	"github.com/reusee/rlm/configs"
	"github.com/reusee/rlm/debugs"
	"github.com/reusee/rlm/leaves"
	"github.com/reusee/rlm/logs"
	"github.com/reusee/rlm/metrics"
)

type Module struct {
	dscope.Module
	Configs configs.Module
	Debugs  debugs.Module
	Leaves  leaves.Module
	Logs    logs.Module
	Metrics metrics.Module
}
