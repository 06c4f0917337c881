package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"rojasfit_backend/internals/features/finance/payments/service"
)

// Reconciler is the slice of the payment service the job needs.
type Reconciler interface {
	ReconcileMissingGrants(ctx context.Context, limit int) (service.ReconcileReport, error)
}

type ReconcileJob struct {
	Service Reconciler
	Batch   int
	Timeout time.Duration
}

// Run performs one pass. It is also what `rojasctl reconcile` calls.
func (j *ReconcileJob) Run(ctx context.Context) (service.ReconcileReport, error) {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = 4 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	rep, err := j.Service.ReconcileMissingGrants(ctx, j.Batch)
	if err != nil {
		log.Printf("[GRANT-RECONCILE] error: %v", err)
		return rep, err
	}
	if rep.Claims > 0 {
		log.Printf("[GRANT-RECONCILE] claims=%d granted=%d errors=%d", rep.Claims, rep.Granted, rep.Errors)
	}
	return rep, nil
}

// Start schedules the job and starts the cron runner. Call Stop on shutdown.
func Start(schedule string, job *ReconcileJob) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	_, err := c.AddFunc(schedule, func() {
		_, _ = job.Run(context.Background())
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[GRANT-RECONCILE] started schedule=%q batch=%d", schedule, job.Batch)
	c.Start()
	return c, nil
}
