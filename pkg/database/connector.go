package database

import (
	"context"
	"database/sql/driver"

	"github.com/pkg/errors"
)

// pragmaConnector wraps a driver.Connector and runs a fixed list of
// statements on every new connection before handing it to the pool.
type pragmaConnector struct {
	connector driver.Connector
	pragmas   []string
}

func newPragmaConnector(connector driver.Connector, pragmas []string) *pragmaConnector {
	return &pragmaConnector{connector: connector, pragmas: pragmas}
}

func (pc *pragmaConnector) Connect(ctx context.Context) (driver.Conn, error) {
	conn, err := pc.connector.Connect(ctx)
	if err != nil {
		return nil, err
	}

	execer, ok := conn.(driver.ExecerContext)
	if !ok {
		_ = conn.Close()
		return nil, errors.New("sqlite connection does not support ExecContext")
	}

	for _, pragma := range pc.pragmas {
		if _, err := execer.ExecContext(ctx, pragma, nil); err != nil {
			_ = conn.Close()
			return nil, errors.Wrapf(err, "failed to run %q", pragma)
		}
	}

	return conn, nil
}

func (pc *pragmaConnector) Driver() driver.Driver {
	return pc.connector.Driver()
}
