// Package main provides the batch battle simulator: it loads a scenario
// and a mechanics configuration, runs a batch of deterministic battles,
// and reports aggregate outcomes.
package main

import (
	"flag"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/warband/internal/config"
	"github.com/cory-johannsen/warband/internal/game/battle"
	"github.com/cory-johannsen/warband/internal/game/mechanics"
	"github.com/cory-johannsen/warband/internal/game/rng"
	"github.com/cory-johannsen/warband/internal/game/targeting"
	"github.com/cory-johannsen/warband/internal/observability"
	"github.com/cory-johannsen/warband/internal/scripting"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/simulate.yaml", "path to configuration file")
	battles := flag.Int("battles", 0, "override simulation.battles")
	seed := flag.Uint64("seed", 0, "override simulation.seed")
	preset := flag.String("preset", "", "override simulation.preset (mvp, roguelike, tactical)")
	roster := flag.String("roster", "", "override paths.roster")
	flag.Parse()

	v := viper.New()
	v.SetConfigFile(*configPath)
	v.SetEnvPrefix("WARBAND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	config.SetDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("reading config: %v", err)
	}
	if *battles > 0 {
		v.Set("simulation.battles", *battles)
	}
	if *seed > 0 {
		v.Set("simulation.seed", *seed)
	}
	if *preset != "" {
		v.Set("simulation.preset", *preset)
	}
	if *roster != "" {
		v.Set("paths.roster", *roster)
	}

	cfg, err := config.LoadFromViper(v)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	runID := uuid.NewString()
	logger.Info("starting simulation batch",
		zap.String("run_id", runID),
		zap.Int("battles", cfg.Simulation.Battles),
		zap.Uint64("seed", cfg.Simulation.Seed),
	)

	mechCfg, err := loadMechanics(cfg)
	if err != nil {
		logger.Fatal("loading mechanics config", zap.Error(err))
	}
	pipe, err := mechanics.NewPipeline(mechCfg)
	if err != nil {
		logger.Fatal("building mechanics pipeline", zap.Error(err))
	}

	ros, err := battle.LoadRoster(cfg.Paths.Roster)
	if err != nil {
		logger.Fatal("loading roster", zap.Error(err))
	}
	initial, err := ros.BattleState()
	if err != nil {
		logger.Fatal("building battle state", zap.Error(err))
	}

	var hooks *scripting.Hooks
	if cfg.Paths.Scripts != "" {
		hooks, err = scripting.LoadHooks(cfg.Paths.Scripts, cfg.Scripting.InstructionLimit, logger)
		if err != nil {
			logger.Fatal("loading scripts", zap.Error(err))
		}
		defer hooks.Close()
		logger.Info("lua hooks loaded", zap.String("dir", cfg.Paths.Scripts))
	}

	outcomes := make([]battle.Outcome, cfg.Simulation.Battles)
	var g errgroup.Group
	if cfg.Simulation.Parallelism > 0 {
		g.SetLimit(cfg.Simulation.Parallelism)
	}
	for i := 0; i < cfg.Simulation.Battles; i++ {
		i := i
		g.Go(func() error {
			// Each worker gets its own runner; the shared pipeline and
			// hooks are safe because runner calls into them serially.
			battleSeed := rng.Derive(cfg.Simulation.Seed, "battle", i)
			runner := battle.NewRunner(pipe, observability.BattleLogger(logger, runID, i, battleSeed))
			runner.MaxRounds = cfg.Simulation.MaxRounds
			runner.Kernel.MinDamage = cfg.Simulation.MinDamage
			runner.Strategy = targeting.Strategy(cfg.Simulation.Strategy)
			if hooks != nil {
				runner.Hook = hooks.OnDamage
			}
			outcomes[i] = runner.Run(initial, battleSeed)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Fatal("running battles", zap.Error(err))
	}

	wins := [2]int{}
	draws := 0
	totalRounds := 0
	for _, o := range outcomes {
		if o.Winner < 0 {
			draws++
		} else {
			wins[o.Winner]++
		}
		totalRounds += o.Rounds
	}
	logger.Info("simulation batch complete",
		zap.String("run_id", runID),
		zap.Int("team0_wins", wins[0]),
		zap.Int("team1_wins", wins[1]),
		zap.Int("draws", draws),
		zap.Float64("avg_rounds", float64(totalRounds)/float64(len(outcomes))),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// loadMechanics picks the preset when one is configured, the mechanics
// file otherwise.
func loadMechanics(cfg config.Config) (mechanics.MechanicsConfig, error) {
	if cfg.Simulation.Preset != "" {
		return mechanics.Preset(cfg.Simulation.Preset)
	}
	return mechanics.LoadFile(cfg.Paths.Mechanics)
}
