package cli

import (
	"github.com/spf13/cobra"

	"github.com/platinummonkey/signup/pkg/catalog"
	"github.com/platinummonkey/signup/pkg/config"
	"github.com/platinummonkey/signup/pkg/submission"
	"github.com/platinummonkey/signup/pkg/wizard"
)

// wizard: run the sign-up form in the terminal
func wizardCmd(opts *globalOptions) *cobra.Command {
	var failureStep int

	cmd := &cobra.Command{
		Use:   "wizard",
		Short: "Sign up interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("failure-step") {
				cfg, err := config.LoadWizardConfig()
				if err != nil {
					return err
				}
				failureStep = cfg.FailureStep
			}

			w := wizard.New(wizard.WithFailureStep(failureStep))
			session := NewSession(w, cmd.InOrStdin(), cmd.OutOrStdout())
			return session.Run(cmd.Context(),
				catalog.NewClient(opts.apiURL, nil),
				submission.NewClient(opts.apiURL, nil),
			)
		},
	}
	cmd.Flags().IntVar(&failureStep, "failure-step", 1, "step to return to when a submission fails (default $SIGNUP_FAILURE_STEP or 1)")
	return cmd
}
