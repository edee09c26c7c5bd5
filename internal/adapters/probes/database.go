package probes

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/equihire/equihire-core/internal/core"
)

// DatabaseProbe pings the Postgres pool and reports its usage.
type DatabaseProbe struct {
	DB *sql.DB
}

var _ core.IntegrationProbe = (*DatabaseProbe)(nil)

func (p *DatabaseProbe) Info() core.ProbeInfo { return DatabaseInfo }

func (p *DatabaseProbe) Check(ctx context.Context) core.ProbeResult {
	if p.DB == nil {
		return notConfigured()
	}
	if err := p.DB.PingContext(ctx); err != nil {
		return failure("ping", err)
	}

	var version string
	if err := p.DB.QueryRowContext(ctx, `SHOW server_version`).Scan(&version); err != nil {
		return failure("server version", err)
	}

	st := p.DB.Stats()
	return connected("PostgreSQL "+version,
		metric("Open connections", strconv.Itoa(st.OpenConnections)),
		metric("In use", strconv.Itoa(st.InUse)),
		metric("Idle", strconv.Itoa(st.Idle)),
	)
}
