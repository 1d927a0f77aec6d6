package main

import (
	"flag"
	"time"

	"github.com/akmonengine/kinema"
	"github.com/akmonengine/kinema/config"
	"go.uber.org/zap"
)

func main() {
	scenePath := flag.String("scene", "example/simpleScene/scene.yaml", "scene file, .yaml or .toml")
	steps := flag.Int("steps", 300, "number of steps to run")
	rate := flag.Float64("rate", 60, "steps per simulated second")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*scenePath)
	if err != nil {
		logger.Fatal("load scene", zap.String("path", *scenePath), zap.Error(err))
	}

	scene, err := kinema.BuildScene(cfg, logger.Named("world"))
	if err != nil {
		logger.Fatal("build scene", zap.Error(err))
	}
	world := scene.World

	world.Events.Subscribe(kinema.COLLISION_ENTER, func(event kinema.Event) {
		e := event.(kinema.CollisionEnterEvent)
		logger.Info("collision",
			zap.Stringer("a", e.BodyA.ID),
			zap.Stringer("b", e.BodyB.ID),
			zap.Float64("depth", e.Contact.Depth),
		)
	})
	world.Events.Subscribe(kinema.TRIGGER_ENTER, func(event kinema.Event) {
		e := event.(kinema.TriggerEnterEvent)
		logger.Info("trigger entered", zap.Stringer("a", e.BodyA.ID), zap.Stringer("b", e.BodyB.ID))
	})
	world.Events.Subscribe(kinema.ON_SLEEP, func(event kinema.Event) {
		logger.Info("asleep", zap.Stringer("body", event.(kinema.SleepEvent).Body.ID))
	})

	ball, hasBall := scene.Body("ball")

	dt := 1 / *rate
	logEvery := max(1, int(*rate))
	start := time.Now()
	for step := range *steps {
		world.Step(dt)

		if hasBall && step%logEvery == 0 {
			logger.Info("ball",
				zap.Int("step", step),
				zap.Any("position", ball.Position()),
				zap.Any("velocity", ball.Velocity),
				zap.Bool("sleeping", ball.IsSleeping),
			)
		}
	}

	logger.Info("done",
		zap.Int("steps", *steps),
		zap.Duration("simulated", time.Duration(float64(*steps)*dt*float64(time.Second))),
		zap.Duration("elapsed", time.Since(start)),
	)
}
