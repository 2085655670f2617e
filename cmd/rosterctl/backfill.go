package main

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/ogurasousui/codex-face-attendance/internal/adapters/extractor/httpmodel"
	"github.com/ogurasousui/codex-face-attendance/internal/adapters/repository/postgres"
	"github.com/ogurasousui/codex-face-attendance/internal/core/employee"
	"github.com/ogurasousui/codex-face-attendance/internal/platform/config"
	pg "github.com/ogurasousui/codex-face-attendance/internal/platform/db/postgres"
	"github.com/spf13/cobra"
)

type backfiller interface {
	BackfillDescriptors(ctx context.Context, in employee.BackfillInput) (*employee.BackfillReport, error)
}

func newBackfillCmd(cfgPath func() string) *cobra.Command {
	var (
		limit      int
		maxBatches int
	)

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Compute face descriptors for employees that have a photo but no descriptor",
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

			extractor, err := httpmodel.New(cfg.Extractor.Endpoint, cfg.Extractor.Timeout)
			if err != nil {
				return fmt.Errorf("initialize extractor client: %w", err)
			}

			// 勤怠とキャッシュはこのコマンドでは扱わない。稼働中のサーバーはキャッシュ TTL 経過後に反映する
			svc := employee.NewService(postgres.NewEmployeeRepository(dbPool), extractor, nil, pg.NewTransactionManager(dbPool))
			return runBackfill(ctx, cmd.OutOrStdout(), svc, limit, maxBatches)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "employees processed per batch")
	cmd.Flags().IntVar(&maxBatches, "max-batches", 0, "stop after this many batches (0 processes every pending employee)")
	return cmd
}

// runBackfill は前のバッチの最後の社員から続けて、未処理の社員が無くなるまでバッチを繰り返します。
func runBackfill(ctx context.Context, out io.Writer, svc backfiller, limit, maxBatches int) error {
	var (
		total employee.BackfillReport
		after *employee.BackfillCursor
	)
	for batch := 1; maxBatches <= 0 || batch <= maxBatches; batch++ {
		report, err := svc.BackfillDescriptors(ctx, employee.BackfillInput{Limit: limit, After: after})
		if err != nil {
			return fmt.Errorf("backfill batch %d: %w", batch, err)
		}
		if report.Next == nil {
			break
		}

		total.Processed += report.Processed
		total.Updated += report.Updated
		total.NoFace += report.NoFace
		total.Failed += report.Failed
		total.Failures = append(total.Failures, report.Failures...)

		log.Printf("backfill batch %d: processed=%d updated=%d no_face=%d failed=%d",
			batch, report.Processed, report.Updated, report.NoFace, report.Failed)
		after = report.Next
	}

	fmt.Fprintf(out, "processed=%d updated=%d no_face=%d failed=%d\n", total.Processed, total.Updated, total.NoFace, total.Failed)
	for _, f := range total.Failures {
		fmt.Fprintf(out, "  %s: %v\n", f.EmployeeID, f.Err)
	}
	return nil
}
