// Copyright 2026 The Field Labs Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Command dine runs a dining-philosophers simulation and narrates it.
//
// Configuration is taken from DINE_* environment variables; see
// Settings. The naive protocol is available on purpose: run it to watch
// progress stop.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"github.com/fieldlabs/concurrency-powertools/dine"
	"github.com/fieldlabs/concurrency-powertools/pace"
)

// Settings is populated from the environment by envconfig.
type Settings struct {
	Seats       int           `default:"5"`
	Meals       int           `default:"20" desc:"meals per seat; 0 runs until interrupted"`
	Protocol    string        `default:"admission" desc:"naive, lower-first, admission, scheduled"`
	Capacity    int           `default:"0" desc:"admission gate size; 0 means seats-1"`
	PauseMax    time.Duration `default:"2ms" split_words:"true"`
	Development bool          `default:"true"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var settings Settings
	if err := envconfig.Process("dine", &settings); err != nil {
		return err
	}

	logger, err := newLogger(settings.Development)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	protocol, err := protocolFor(settings)
	if err != nil {
		return err
	}

	var pacer pace.Strategy = pace.None()
	if settings.PauseMax > 0 {
		pacer, err = pace.UniformJitter(settings.PauseMax, time.Now().UnixNano())
		if err != nil {
			return err
		}
	}

	sim, err := dine.New(dine.Config{
		Seats:        settings.Seats,
		MealsPerSeat: settings.Meals,
		Protocol:     protocol,
		Pacer:        pacer,
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	sim.SetEvents(&dine.Events{
		OnMeal: func(seat int, took time.Duration) {
			logger.Info("meal finished",
				zap.Int("seat", seat),
				zap.Duration("took", took))
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = sim.Run(ctx)
	logger.Info("simulation over",
		zap.String("protocol", protocol.Name()),
		zap.Int64("total_meals", sim.Progress().Peek()))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func protocolFor(settings Settings) (dine.Protocol, error) {
	switch settings.Protocol {
	case "naive":
		return dine.Naive(), nil
	case "lower-first":
		return dine.LowerFirst(), nil
	case "admission":
		return dine.Admission(settings.Capacity), nil
	case "scheduled":
		return dine.Scheduled(), nil
	default:
		return nil, fmt.Errorf("unknown protocol %q", settings.Protocol)
	}
}

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
