// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command stackdemo assembles a small velocity-control stack (postural task
// plus joint and velocity limits), drives it for a number of control ticks
// and reports the merged problem shapes and cycle timing. It stands in for
// the robot-side control loop: the solver step is replaced by a bound-
// clamped posture step, everything else follows the real per-tick protocol
// of update-then-read.
package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/curioloop/taskstack/stack"
	"github.com/curioloop/taskstack/velocity"
)

type demoConfig struct {
	Joints        int       `yaml:"joints"`
	DT            float64   `yaml:"dt"`
	Lambda        float64   `yaml:"lambda"`
	VelocityLimit float64   `yaml:"velocity_limit"`
	BoundScaling  float64   `yaml:"bound_scaling"`
	QMin          []float64 `yaml:"q_min"`
	QMax          []float64 `yaml:"q_max"`
	Reference     []float64 `yaml:"reference"`
}

func defaultConfig() demoConfig {
	return demoConfig{
		Joints:        7,
		DT:            25e-3,
		Lambda:        0.3,
		VelocityLimit: 0.3,
		BoundScaling:  0.6,
	}
}

func loadConfig(path string) (demoConfig, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

func (c demoConfig) vectors() (qMin, qMax, ref *mat.VecDense, err error) {
	fill := func(v []float64, def func(i int) float64) (*mat.VecDense, error) {
		if v == nil {
			out := mat.NewVecDense(c.Joints, nil)
			for i := 0; i < c.Joints; i++ {
				out.SetVec(i, def(i))
			}
			return out, nil
		}
		if len(v) != c.Joints {
			return nil, fmt.Errorf("config vector has %d entries for %d joints", len(v), c.Joints)
		}
		return mat.NewVecDense(c.Joints, v), nil
	}
	if qMin, err = fill(c.QMin, func(int) float64 { return -math.Pi }); err != nil {
		return
	}
	if qMax, err = fill(c.QMax, func(int) float64 { return math.Pi }); err != nil {
		return
	}
	ref, err = fill(c.Reference, func(i int) float64 { return 0.5 * math.Sin(float64(i)) })
	return
}

func run(log *slog.Logger, cfg demoConfig, ticks int, bilateral bool) error {
	qMin, qMax, ref, err := cfg.vectors()
	if err != nil {
		return err
	}
	q := mat.NewVecDense(cfg.Joints, nil)

	postural, err := velocity.NewPostural(q)
	if err != nil {
		return err
	}
	if err := postural.SetReference(ref); err != nil {
		return err
	}
	if err := postural.SetLambda(cfg.Lambda); err != nil {
		return err
	}

	jointLimits, err := velocity.NewJointLimits(q, qMin, qMax)
	if err != nil {
		return err
	}
	if err := jointLimits.SetBoundScaling(cfg.BoundScaling); err != nil {
		return err
	}
	velLimits, err := velocity.NewLimits(cfg.VelocityLimit, cfg.DT, cfg.Joints)
	if err != nil {
		return err
	}

	var policy stack.AggregationPolicy
	if bilateral {
		policy = stack.UnilateralToBilateral
	}
	bounds, err := stack.AggregateConstraintsAt(
		[]stack.Constraint{jointLimits, velLimits}, q, policy)
	if err != nil {
		return err
	}
	objective, err := stack.AggregateTasksAt([]stack.Task{postural}, q)
	if err != nil {
		return err
	}

	log.Info("stack assembled",
		"constraints", bounds.ConstraintID(),
		"policy", policy.String(),
		"joints", cfg.Joints,
		"dt", cfg.DT)

	var cycleSum time.Duration
	report := max(1, ticks/5)
	for tick := 1; tick <= ticks; tick++ {
		tic := time.Now()

		if err := objective.Update(q); err != nil {
			return err
		}
		if err := bounds.Update(q); err != nil {
			return err
		}

		// stand-in for the QP step: posture error clamped into the box
		b := objective.B()
		for i := 0; i < cfg.Joints; i++ {
			dq := min(max(b.AtVec(i), bounds.LowerBound().AtVec(i)), bounds.UpperBound().AtVec(i))
			q.SetVec(i, q.AtVec(i)+dq)
		}
		cycleSum += time.Since(tic)

		// halfway in, retune the velocity limit through the capability
		// query, the way velocity allocation retunes one stack level
		if tick == ticks/2 {
			for _, c := range bounds.Children() {
				if l, ok := velocity.AsLimits(c); ok {
					if err := l.SetVelocityLimit(3 * cfg.VelocityLimit); err != nil {
						return err
					}
					log.Info("velocity limit retuned", "limit", l.VelocityLimit())
				}
			}
		}

		if tick%report == 0 {
			errVec := mat.NewVecDense(cfg.Joints, nil)
			errVec.SubVec(ref, q)
			rows, _ := objective.A().Dims()
			log.Info("tick",
				"n", tick,
				"posture_error", mat.Norm(errVec, 2),
				"objective_rows", rows,
				"mean_cycle", cycleSum/time.Duration(tick))
		}
	}
	return nil
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var (
		configPath string
		ticks      int
		bilateral  bool
	)
	root := &cobra.Command{
		Use:   "stackdemo",
		Short: "Drive a postural task stack through its per-tick update loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return run(log, cfg, ticks, bilateral)
		},
		SilenceUsage: true,
	}
	root.Flags().StringVarP(&configPath, "config", "c", "", "YAML stack configuration")
	root.Flags().IntVarP(&ticks, "ticks", "t", 200, "number of control ticks to simulate")
	root.Flags().BoolVar(&bilateral, "bilateral", false, "aggregate inequalities in bilateral form")

	if err := root.Execute(); err != nil {
		log.Error("stackdemo failed", "err", err)
		os.Exit(1)
	}
}
