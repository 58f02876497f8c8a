package leaves

import (
	"github.com/reusee/rlm/configs"
	"golang.org/x/time/rate"
)

// Limiter throttles leaf requests. Nil means unthrottled.
type Limiter = *rate.Limiter

func (Module) Limiter(
	loader configs.Loader,
) Limiter {
	limit := configs.First[float64](loader, "leaf_rate_limit")
	if limit <= 0 {
		return nil
	}
	burst := max(configs.First[int](loader, "leaf_rate_burst"), 1)
	return rate.NewLimiter(rate.Limit(limit), burst)
}
