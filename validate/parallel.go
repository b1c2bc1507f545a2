package validate

import (
	"github.com/alitto/pond/v2"
	"github.com/amp-labs/amp-tablecheck/logger"
)

// job is one unit of work: a column check on one column, or a table check.
type job struct {
	check  string
	column string
	fn     func(sink *collector) error
}

// execute runs jobs and returns their violations in job order, so the
// report does not depend on how many workers were used.
func (r *run) execute(jobs []job) ([][]Violation, error) {
	if r.opts.concurrency <= 1 || len(jobs) < 2 { //nolint:mnd
		out := make([][]Violation, len(jobs))

		for i, j := range jobs {
			vs, err := r.runJob(j)
			if err != nil {
				return nil, err
			}

			out[i] = vs
		}

		return out, nil
	}

	pool := pond.NewResultPool[[]Violation](r.opts.concurrency)
	defer pool.StopAndWait()

	group := pool.NewGroup()

	for _, j := range jobs {
		group.SubmitErr(func() ([]Violation, error) {
			return r.runJob(j)
		})
	}

	return group.Wait()
}

// runJob stops the run once the context is done; checks themselves are not
// interrupted.
func (r *run) runJob(j job) ([]Violation, error) {
	if err := r.ctx.Err(); err != nil {
		return nil, err
	}

	sink := newCollector(r.opts.sampleSize)

	if err := j.fn(sink); err != nil {
		return nil, err
	}

	r.checks.Inc()

	if len(sink.violations) > 0 {
		logger.Get(r.ctx).Debug("check finished",
			"check", j.check, "column", j.column, "violations", len(sink.violations))
	}

	return sink.violations, nil
}
