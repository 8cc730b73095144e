package dataset

import (
	"context"
	"fmt"

	"circadian/internal/logger"

	"golang.org/x/sync/errgroup"
)

// LoadOptions 配置一次加载。
type LoadOptions struct {
	Manifest Manifest
	Policy   MalformedPolicy
}

// Load fetches all six resources concurrently and returns both metric
// datasets, or an ErrLoadFailure if any single resource fails. There is no
// partial result and no retry.
func Load(ctx context.Context, src Source, opts LoadOptions) (Datasets, error) {
	if src == nil {
		return Datasets{}, fmt.Errorf("%w: nil source", ErrLoadFailure)
	}
	policy := opts.Policy
	if policy == "" {
		policy = PolicyPassthrough
	}
	manifest := opts.Manifest
	if manifest.isZero() {
		manifest = DefaultManifest()
	}
	resources := manifest.Resources()
	results := make([]ParseResult, len(resources))

	group, gctx := errgroup.WithContext(ctx)
	for i, res := range resources {
		group.Go(func() error {
			parsed, err := fetchOne(gctx, src, res, policy)
			if err != nil {
				return fmt.Errorf("%w: %s (%s/%s): %w", ErrLoadFailure, res.Name, res.Metric, res.Cohort.Key(), err)
			}
			results[i] = parsed
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Datasets{}, err
	}

	var series [2][cohortCount]CohortSeries
	for i, res := range resources {
		r := results[i]
		if r.Malformed > 0 {
			switch policy {
			case PolicyDrop:
				logger.Warnf("%s: dropped %d malformed rows of %d", res.Name, r.Malformed, r.Rows)
			default:
				logger.Warnf("%s: %d of %d rows are not numeric and will plot as NaN", res.Name, r.Malformed, r.Rows)
			}
		}
		logger.Debugf("loaded %s: %d samples", res.Name, len(r.Series))
		series[res.Metric][res.Cohort] = r.Series
	}
	temp := series[MetricTemperature]
	act := series[MetricActivity]
	return NewDatasets(
		NewMetricDataset(MetricTemperature, temp[CohortFemEst], temp[CohortFemNonEst], temp[CohortMale]),
		NewMetricDataset(MetricActivity, act[CohortFemEst], act[CohortFemNonEst], act[CohortMale]),
	), nil
}

func fetchOne(ctx context.Context, src Source, res Resource, policy MalformedPolicy) (ParseResult, error) {
	rc, err := src.Open(ctx, res.Name)
	if err != nil {
		return ParseResult{}, err
	}
	defer rc.Close()
	return ParseCSV(rc, policy)
}
