// Command awaken compares two awakening policies, or summarizes one.
//
//	awaken -configs ./configs -profile fast -a default -b greedy -trials 5000
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/xtding233/awaken-backend/internal/awaken"
	"github.com/xtding233/awaken-backend/internal/config"
	"github.com/xtding233/awaken-backend/internal/logger"
	"github.com/xtding233/awaken-backend/internal/service"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "awaken:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("awaken", flag.ContinueOnError)
	var (
		configDir = fs.String("configs", "./configs", "config directory")
		profile   = fs.String("profile", "", "profile overlay under <configs>/awaken/profiles")
		nameA     = fs.String("a", "", "policy to evaluate (default: compare.a or \"default\")")
		nameB     = fs.String("b", "", "competitor policy; omit with -single")
		single    = fs.Bool("single", false, "summarize policy -a only")
		goal      = fs.Int("goal", -1, "target star level (default: config or 5)")
		trials    = fs.Int("trials", -1, "number of trials (default: config or 5000)")
		seed      = fs.Uint64("seed", 0, "random seed, 0 for a crypto source")
		logConfig = fs.String("log_config", "", "path to a yaml file with a logging section")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	logCfg, err := logger.LoadConfig(*logConfig)
	if err != nil {
		return err
	}
	if err := logger.Initialize(logCfg); err != nil {
		return err
	}

	svc := service.New(config.NewLoader(*configDir))
	svc.MaxTrials = 0 // local runs are not capped
	ctx := context.Background()

	var goalOpt, trialsOpt *int
	if *goal >= 0 {
		goalOpt = goal
	}
	if *trials >= 0 {
		trialsOpt = trials
	}
	var seedOpt *uint64
	if *seed != 0 {
		seedOpt = seed
	}

	if *single {
		res, err := svc.Simulate(ctx, service.SimulateRequest{
			Profile: *profile, Policy: *nameA, Goal: goalOpt, Trials: trialsOpt, Seed: seedOpt,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Policy: %s (goal %d, %d trials)\n", res.Policy, res.Goal, res.Trials)
		writeStats(stdout, res.Stats)
		return nil
	}

	res, err := svc.Compare(ctx, service.CompareRequest{
		Profile: *profile, A: *nameA, B: *nameB, Goal: goalOpt, Trials: trialsOpt, Seed: seedOpt,
	})
	if err != nil {
		return err
	}
	c := res.Comparison
	if err := c.WriteReport(stdout, res.PolicyA, res.PolicyB); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s:\n", res.A)
	writeStats(stdout, c.StatsA)
	fmt.Fprintf(stdout, "%s:\n", res.B)
	writeStats(stdout, c.StatsB)
	return nil
}

func writeStats(w io.Writer, st awaken.Stats) {
	fmt.Fprintf(w, "  mean %.2f  stddev %.2f  min %d  p50 %.0f  p90 %.0f  p99 %.0f  max %d\n",
		st.Mean, st.StdDev, st.Min, st.P50, st.P90, st.P99, st.Max)
}
