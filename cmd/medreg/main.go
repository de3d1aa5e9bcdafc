// CLI entry point for MedReg-Intelligence.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/turtacn/MedReg-Intelligence/internal/application/engine"
	"github.com/turtacn/MedReg-Intelligence/internal/config"
	neo4jdriver "github.com/turtacn/MedReg-Intelligence/internal/infrastructure/database/neo4j"
	neo4jrepo "github.com/turtacn/MedReg-Intelligence/internal/infrastructure/database/neo4j/repositories"
	"github.com/turtacn/MedReg-Intelligence/internal/infrastructure/database/postgres"
	pgrepo "github.com/turtacn/MedReg-Intelligence/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/MedReg-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MedReg-Intelligence/internal/interfaces/cli"
)

func main() {
	root := cli.NewRootCommand(cli.Deps{
		Factory: buildEngine,
		Out:     os.Stdout,
	})
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildEngine wires the engine against the configured infrastructure.  The
// CLI connects only what a one-shot command needs: postgres always, neo4j
// when enabled.  Kafka and redis are server-side concerns.
func buildEngine(ctx context.Context, cfg *config.Config, log logging.Logger) (engine.Engine, func(), error) {
	conn, err := postgres.NewConnection(ctx, cfg.Database, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { conn.Close() }

	deps := engine.Deps{
		Store:  pgrepo.NewRecordRepo(conn.Pool(), log),
		Config: cfg.Engine,
		Logger: log,
	}

	if cfg.Neo4j.Enabled {
		nd, err := neo4jdriver.NewDriver(cfg.Neo4j, log)
		if err != nil {
			log.Warn("neo4j unavailable, graph export disabled", logging.Err(err))
		} else {
			deps.Graph = neo4jrepo.NewGraphRepo(nd, log)
			prev := cleanup
			cleanup = func() {
				nd.Close()
				prev()
			}
		}
	}

	eng, err := engine.New(deps)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return eng, cleanup, nil
}
