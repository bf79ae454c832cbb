package cmd

import (
	"github.com/spf13/cobra"

	"github.com/enerflow/gridbalance/infra/logger"
)

var workers int

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank infrastructure upgrades by counterfactual re-simulation",
	RunE:  recommend,
}

func init() {
	recommendCmd.Flags().IntVarP(&workers, "workers", "w", 4, "concurrent counterfactual runs")
	rootCmd.AddCommand(recommendCmd)
}

func recommend(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	_, err = svc.Recommend(workers)
	return err
}
