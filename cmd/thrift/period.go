package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/thrift/internal/common"
	"github.com/Veraticus/thrift/internal/model"
)

func addPeriodFlags(cmd *cobra.Command) {
	cmd.Flags().String("month", "", "Reference month (YYYY-MM, default: current month)")
	cmd.Flags().Bool("year", false, "Cover the whole calendar year of the reference month")
	cmd.Flags().String("start", "", "Start date of a custom range (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "End date of a custom range (YYYY-MM-DD)")
	cmd.MarkFlagsRequiredTogether("start", "end")
	cmd.MarkFlagsMutuallyExclusive("month", "start")
	cmd.MarkFlagsMutuallyExclusive("year", "start")
}

// periodFromFlags builds the analysis period selected on the command line.
func periodFromFlags(cmd *cobra.Command, now time.Time) (model.Period, error) {
	month, _ := cmd.Flags().GetString("month")
	year, _ := cmd.Flags().GetBool("year")
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")

	var period model.Period
	switch {
	case start != "" || end != "":
		period = model.CustomPeriod(start, end)
	case year:
		if month == "" {
			month = now.Format("2006-01")
		}
		period = model.YearPeriod(month)
	default:
		if month == "" {
			month = now.Format("2006-01")
		}
		period = model.MonthPeriod(month)
	}

	if err := period.Validate(); err != nil {
		return model.Period{}, fmt.Errorf("%w: %w", common.ErrInvalidInput, err)
	}
	return period, nil
}
