package probes

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/equihire/equihire-core/internal/core"
)

// SessionCounter reports how many sessions are live; capped means the scan stopped early.
type SessionCounter interface {
	CountActive(ctx context.Context) (n int, capped bool, err error)
}

// CacheProbe pings Redis and reports key and session counts.
type CacheProbe struct {
	Client   redis.UniversalClient
	Sessions SessionCounter
}

var _ core.IntegrationProbe = (*CacheProbe)(nil)

func (p *CacheProbe) Info() core.ProbeInfo { return SessionCacheInfo }

func (p *CacheProbe) Check(ctx context.Context) core.ProbeResult {
	if p.Client == nil {
		return notConfigured()
	}
	if err := p.Client.Ping(ctx).Err(); err != nil {
		return failure("ping", err)
	}
	size, err := p.Client.DBSize(ctx).Result()
	if err != nil {
		return failure("dbsize", err)
	}

	res := connected("PONG", metric("Keys", strconv.FormatInt(size, 10)))
	if p.Sessions != nil {
		n, capped, err := p.Sessions.CountActive(ctx)
		if err != nil {
			return failure("count sessions", err)
		}
		v := strconv.Itoa(n)
		if capped {
			v += "+"
		}
		res.Metrics = append(res.Metrics, metric("Active sessions", v))
	}
	return res
}
