package usecase

import (
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/omunroe-com/shiftspace/internal/domain"
)

// fanout runs independent store operations with bounded parallelism. Failures
// are recorded and logged; they never cancel sibling operations.
type fanout struct {
	g       errgroup.Group
	report  *domain.PublishReport
	logger  *zap.Logger
	shiftID string
}

func newFanout(limit int, report *domain.PublishReport, logger *zap.Logger, shiftID string) *fanout {
	f := &fanout{
		report:  report,
		logger:  logger,
		shiftID: shiftID,
	}
	f.g.SetLimit(limit)
	return f
}

func (f *fanout) run(op, target string, fn func() error) {
	f.g.Go(func() error {
		if err := fn(); err != nil {
			f.fail(op, target, err)
		}
		return nil
	})
}

func (f *fanout) fail(op, target string, err error) {
	f.report.Fail(op, target, err)
	f.logger.Warn("fan-out operation failed",
		zap.String("shift", f.shiftID),
		zap.String("operation", op),
		zap.String("target", target),
		zap.Error(err),
	)
}

func (f *fanout) wait() {
	_ = f.g.Wait()
}
