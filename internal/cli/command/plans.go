package command

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/trainly-go/internal/cli/output"
	"github.com/yndnr/trainly-go/internal/core/domain"
	"github.com/yndnr/trainly-go/pkg/fetch"
)

// PlansCommand returns the plans command.
func PlansCommand() *cli.Command {
	return &cli.Command{
		Name:   "plans",
		Usage:  "List training plans",
		Action: plansList,
	}
}

// plansResource loads plans with the session's token. A rejected token
// ends the session, which in turn prints the login hint.
func plansResource(rt *Runtime) *fetch.Resource[[]domain.TrainingPlan] {
	return fetch.New(
		func(ctx context.Context) ([]domain.TrainingPlan, error) {
			var plans []domain.TrainingPlan
			if err := rt.Identity.Get(ctx, rt.Config.Identity.PlansPath, &plans); err != nil {
				return nil, err
			}
			return plans, nil
		},
		fetch.WithFallback([]domain.TrainingPlan{}),
		fetch.WithUnauthorizedHandler[[]domain.TrainingPlan](rt.Session.Logout),
	)
}

func plansList(c *cli.Context) error {
	rt, err := requireRuntime(c)
	if err != nil {
		return err
	}
	if !rt.Session.State().IsAuthenticated() {
		return domain.ErrNotAuthenticated
	}
	f, err := formatterFor(c, rt)
	if err != nil {
		return err
	}

	plans := plansResource(rt)
	loadErr := plans.Load(contextOf(c))
	if domain.IsUnauthorized(loadErr) {
		return loadErr
	}

	snap := plans.Snapshot()
	if snap.Err != "" {
		output.Warn(rt.Err, "could not load plans: %s", snap.Err)
	}
	return f.Format(rt.Out, snap.Data)
}
