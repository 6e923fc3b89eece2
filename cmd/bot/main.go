package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/OliverWarwick/terminal-bot/internal/arena"
	"github.com/OliverWarwick/terminal-bot/internal/buildqueue"
	"github.com/OliverWarwick/terminal-bot/internal/catalog"
	"github.com/OliverWarwick/terminal-bot/internal/config"
	"github.com/OliverWarwick/terminal-bot/internal/deliberate"
	"github.com/OliverWarwick/terminal-bot/internal/eval/neural"
	"github.com/OliverWarwick/terminal-bot/internal/gamemap"
	"github.com/OliverWarwick/terminal-bot/internal/logger"
	"github.com/OliverWarwick/terminal-bot/internal/protocol"
	"github.com/OliverWarwick/terminal-bot/internal/telemetry"
)

func main() {
	debug := flag.Bool("debug", false, "force debug-level logging regardless of LOG_LEVEL")
	flag.Parse()

	cfg := config.Load()
	if *debug {
		cfg.LogLevel = "debug"
	}
	logger.Init(cfg.LogLevel)
	log := logger.Get()

	deliberate.SeedRNG(cfg.Seed)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("received shutdown signal")
		cancel()
	}()

	var tel *telemetry.Broadcaster
	if cfg.DebugWSAddr != "" {
		tel = telemetry.NewBroadcaster(log)
		srv := &http.Server{Addr: cfg.DebugWSAddr, Handler: tel}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn().Err(err).Msg("telemetry server stopped")
			}
		}()
	}

	var adjuster *neural.Model
	if cfg.EvalModelPath != "" {
		m, err := neural.Load(cfg.EvalModelPath)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.EvalModelPath).Msg("failed to load eval model, continuing without it")
		} else {
			adjuster = m
		}
	}

	ctrl := deliberate.NewController(deliberate.OpeningBookByName(cfg.OpeningBook), cfg.RepairBudget, cfg.InterceptorBudget, cfg.AttackBudget)
	ctrl.Log = log
	ctrl.Telemetry = tel
	if adjuster != nil {
		ctrl.Adjuster = adjuster
	}

	if err := run(ctx, os.Stdin, os.Stdout, ctrl, log); err != nil && !errors.Is(err, io.EOF) {
		log.Fatal().Err(err).Msg("bot terminated with error")
	}
	log.Info().Msg("bot exiting")
}

// run drives the engine's line-delimited protocol to completion. Per
// spec.md §7's error handling design, a turn that cannot be fully
// deliberated still ends with a well-formed (possibly empty) end-of-turn
// line rather than leaving the engine waiting or crashing the process.
func run(ctx context.Context, in io.Reader, out io.Writer, ctrl *deliberate.Controller, log zerolog.Logger) error {
	reader := protocol.NewReader(in)
	writer := protocol.NewWriter(out)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := reader.ReadLine()
		if err != nil {
			return err
		}

		switch protocol.PeekKind(line) {
		case protocol.InboundConfig:
			var cfgMsg protocol.ConfigMessage
			if err := json.Unmarshal(line, &cfgMsg); err != nil {
				log.Warn().Err(err).Bool("malformed", errors.Is(err, protocol.ErrMalformedMessage)).Msg("malformed config message")
				continue
			}
			catalog.LoadFromWire(cfgMsg.Config.UnitInformation)
			log.Info().Int("unitCount", len(cfgMsg.Config.UnitInformation)).Msg("engine config received")

		case protocol.InboundTurnState:
			var ts protocol.TurnState
			if err := json.Unmarshal(line, &ts); err != nil {
				log.Warn().Err(err).Bool("malformed", errors.Is(err, protocol.ErrMalformedMessage)).Msg("malformed turn state, submitting empty turn")
				writer.EndTurn()
				continue
			}
			turn := 0
			if len(ts.TurnInfo) > 1 {
				turn = ts.TurnInfo[1]
			}
			g := buildGameMap(ts)
			myHealth, mySP, myMP := statField(ts.P1Stats, 0), statField(ts.P1Stats, 1), statField(ts.P1Stats, 2)
			oppHealth, _, oppMP := statField(ts.P2Stats, 0), statField(ts.P2Stats, 1), statField(ts.P2Stats, 2)

			plan := ctrl.RunTurn(ctx, g, myHealth, oppHealth, mySP, myMP, oppMP, turn)
			emitPlan(writer, plan)
			if err := writer.EndTurn(); err != nil {
				return err
			}

		case protocol.InboundActionFrame:
			var af protocol.ActionFrameState
			if err := json.Unmarshal(line, &af); err != nil {
				continue
			}
			for _, b := range af.Events.Breach {
				if protocol.ReflectWireOwner(b.Owner) == 1 {
					ctrl.RecordBreach(b.Location)
				}
			}

		default:
			log.Debug().Msg("ignoring unrecognized inbound line")
		}
	}
}

func statField(stats []float64, idx int) float64 {
	if idx < len(stats) {
		return stats[idx]
	}
	return 0
}

func emitPlan(w *protocol.Writer, plan deliberate.TurnPlan) {
	for _, b := range plan.BuildsApplied {
		code := protocol.CodeForKind(b.UnitKind)
		if b.Kind == buildqueue.PlacementUpgrade {
			code = protocol.CodeUpgrade
		}
		w.WriteCommand(protocol.Command{Code: code, Cell: b.Cell})
	}
	for _, sp := range plan.InterceptorPlacements {
		w.WriteCommand(protocol.Command{Code: protocol.CodeForKind(sp.Kind), Cell: sp.Cell})
	}
	if plan.Attack != nil {
		for _, sp := range plan.Attack.Spawns {
			for i := 0; i < sp.Count; i++ {
				w.WriteCommand(protocol.Command{Code: protocol.CodeForKind(sp.Kind), Cell: sp.Cell})
			}
		}
	}
}

// buildGameMap translates one wire TurnState into a fresh GameMap, owner
// 0 for p1 (self) and owner 1 for p2 (opponent), per spec.md §6.
func buildGameMap(ts protocol.TurnState) *gamemap.GameMap {
	g := gamemap.New()
	placeWireUnits(g, ts.P1Units, 0)
	placeWireUnits(g, ts.P2Units, 1)
	return g
}

func placeWireUnits(g *gamemap.GameMap, units [][]protocol.WireUnitEntry, owner int) {
	for code, list := range units {
		kind, ok := protocol.KindForCode(protocol.SpawnCode(code))
		if !ok {
			continue
		}
		for _, entry := range list {
			cell := arena.Cell{X: int(entry.X), Y: int(entry.Y)}
			u, err := g.AddUnit(kind, cell, owner, entry.Upgraded)
			if err != nil {
				continue
			}
			u.Health = entry.Health
		}
	}
}
