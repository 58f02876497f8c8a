package metrics

import (
	"github.com/reusee/dscope"
	"github.com/reusee/rlm/logs"
)

type Module struct {
	dscope.Module
	Logs logs.Module
}
