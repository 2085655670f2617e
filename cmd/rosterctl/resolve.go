package main

import (
	"context"
	"fmt"
	"io"

	"github.com/ogurasousui/codex-face-attendance/internal/adapters/repository/postgres"
	"github.com/ogurasousui/codex-face-attendance/internal/core/geo"
	"github.com/ogurasousui/codex-face-attendance/internal/core/outlet"
	"github.com/ogurasousui/codex-face-attendance/internal/platform/config"
	pg "github.com/ogurasousui/codex-face-attendance/internal/platform/db/postgres"
	"github.com/spf13/cobra"
)

type zoneLister interface {
	ActiveZones(ctx context.Context) ([]geo.Zone, error)
}

func newResolveCmd(cfgPath func() string) *cobra.Command {
	var lat, lng float64

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Show which active outlet a coordinate resolves to",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(cfgPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			dbPool, err := pg.NewPool(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("initialize database pool: %w", err)
			}
			defer dbPool.Close()

			svc := outlet.NewService(postgres.NewOutletRepository(dbPool), nil, pg.NewTransactionManager(dbPool))
			return runResolve(ctx, cmd.OutOrStdout(), svc, geo.Coordinate{Latitude: lat, Longitude: lng})
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude in degrees")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude in degrees")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	return cmd
}

func runResolve(ctx context.Context, out io.Writer, zones zoneLister, point geo.Coordinate) error {
	active, err := zones.ActiveZones(ctx)
	if err != nil {
		return fmt.Errorf("load zones: %w", err)
	}

	res := geo.ResolveZone(point, active)
	switch {
	case res.Matched != nil:
		fmt.Fprintf(out, "inside %s (%s): %.0fm from center, radius %.0fm\n",
			res.Matched.Zone.Name, res.Matched.Zone.ID, res.Matched.DistanceMeters, res.Matched.Zone.RadiusMeters)
	case res.Nearest != nil:
		fmt.Fprintf(out, "outside all outlets; nearest %s (%s) is %.0fm away\n",
			res.Nearest.Zone.Name, res.Nearest.Zone.ID, res.Nearest.DistanceMeters)
	default:
		fmt.Fprintln(out, "no active outlets")
	}
	return nil
}
