// Command arena runs bot-vs-bot self-play games for tuning and
// regression testing, persisting results to Postgres and (optionally)
// distributing work across a worker fleet via a Redis queue. The
// concurrency shape — enqueue N jobs, fan out across -workers goroutines,
// collect results, print a summary — is grounded on the teacher's
// cmd/botmatch/main.go, adapted from Diplomacy power-vs-power games to
// tower-defense opening-book-vs-opening-book self-play.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/OliverWarwick/terminal-bot/internal/arena"
	"github.com/OliverWarwick/terminal-bot/internal/candidates"
	"github.com/OliverWarwick/terminal-bot/internal/deliberate"
	"github.com/OliverWarwick/terminal-bot/internal/gamemap"
	"github.com/OliverWarwick/terminal-bot/internal/repository"
	"github.com/OliverWarwick/terminal-bot/internal/repository/postgres"
	redisrepo "github.com/OliverWarwick/terminal-bot/internal/repository/redis"
	"github.com/OliverWarwick/terminal-bot/internal/simulate"
)

// startingHealth and the flat per-turn income approximate the original
// engine's economy closely enough for self-play tuning; this harness is
// a supplement to the spec (not part of its core), so exact income
// curves are not reproduced.
const (
	startingHealth = 30.0
	incomeSP       = 5.0
	incomeMP       = 5.0
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var (
		numGames int
		workers  int
		dbURL    string
		redisURL string
		seed     int64
		p1Book   string
		p2Book   string
		maxTurns int
		dryRun   bool
		jsonOut  bool
	)

	flag.IntVar(&numGames, "n", 1, "number of self-play games to run")
	flag.IntVar(&workers, "workers", 1, "concurrency (parallel games)")
	flag.StringVar(&dbURL, "db", "", "Postgres URL (or DATABASE_URL env); empty implies -dry-run")
	flag.StringVar(&redisURL, "redis", "", "Redis URL for the job queue (empty runs games in-process)")
	flag.Int64Var(&seed, "seed", 0, "base RNG seed (0 = random per game)")
	flag.StringVar(&p1Book, "p1-book", "default", "opening book for player 1")
	flag.StringVar(&p2Book, "p2-book", "default", "opening book for player 2")
	flag.IntVar(&maxTurns, "max-turns", 100, "turn cap before a game is called a draw")
	flag.BoolVar(&dryRun, "dry-run", false, "skip persistence entirely")
	flag.BoolVar(&jsonOut, "json", false, "print a JSON summary instead of log lines")
	flag.Parse()

	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		dryRun = true
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("shutting down")
		cancel()
	}()

	var matchRepo repository.MatchRepository
	if !dryRun {
		db, err := postgres.Connect(dbURL)
		if err != nil {
			log.Fatal().Err(err).Msg("connect postgres")
		}
		defer db.Close()
		matchRepo = postgres.NewMatchRepo(db)
	}

	var queue repository.JobQueue
	if redisURL != "" {
		client, err := redisrepo.NewClient(redisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("connect redis")
		}
		defer client.Close()
		queue = client
	}

	jobs := make([]repository.MatchJob, numGames)
	for i := range jobs {
		s := seed
		if s != 0 {
			s += int64(i)
		}
		jobs[i] = repository.MatchJob{Seed: s, P1Strategy: p1Book, P2Strategy: p2Book}
	}

	if queue != nil {
		for _, j := range jobs {
			if err := queue.Enqueue(ctx, j); err != nil {
				log.Fatal().Err(err).Msg("enqueue match job")
			}
		}
	}

	results := make(chan outcome, numGames)
	var wg sync.WaitGroup
	var dispatched int64

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				var job repository.MatchJob
				if queue != nil {
					j, err := queue.Dequeue(ctx)
					if err != nil || j == nil {
						return
					}
					job = *j
				} else {
					idx := int(atomic.AddInt64(&dispatched, 1)) - 1
					if idx >= len(jobs) {
						return
					}
					job = jobs[idx]
				}
				results <- playAndPersist(ctx, job, matchRepo, maxTurns)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var p1Wins, p2Wins, draws int
	for i := 0; i < numGames; i++ {
		r, ok := <-results
		if !ok {
			break
		}
		switch r.winner {
		case 0:
			p1Wins++
		case 1:
			p2Wins++
		default:
			draws++
		}
		if !jsonOut {
			log.Info().Int("game", i+1).Int("winner", r.winner).Int("turns", r.turns).
				Float64("p1Health", r.finalP1Health).Float64("p2Health", r.finalP2Health).Msg("match complete")
		}
	}

	summary := map[string]int{"p1_wins": p1Wins, "p2_wins": p2Wins, "draws": draws}
	if jsonOut {
		data, _ := json.Marshal(summary)
		fmt.Println(string(data))
	} else {
		log.Info().Interface("summary", summary).Msg("arena run finished")
	}
}

type outcome struct {
	winner        int
	turns         int
	finalP1Health float64
	finalP2Health float64
}

func playAndPersist(ctx context.Context, job repository.MatchJob, repo repository.MatchRepository, maxTurns int) outcome {
	deliberate.SeedRNG(job.Seed)

	var matchID string
	if repo != nil {
		m, err := repo.CreateMatch(ctx, job.Seed, job.P1Strategy, job.P2Strategy)
		if err == nil {
			matchID = m.ID
		} else {
			log.Warn().Err(err).Msg("create match record failed, continuing without persistence")
		}
	}

	c1 := deliberate.NewController(deliberate.OpeningBookByName(job.P1Strategy), 200*time.Millisecond, 200*time.Millisecond, 400*time.Millisecond)
	c2 := deliberate.NewController(deliberate.OpeningBookByName(job.P2Strategy), 200*time.Millisecond, 200*time.Millisecond, 400*time.Millisecond)

	g := gamemap.New()
	p1Health, p2Health := startingHealth, startingHealth
	sp1, mp1, sp2, mp2 := incomeSP, incomeMP, incomeSP, incomeMP

	turn := 0
	for ; turn < maxTurns; turn++ {
		if ctx.Err() != nil {
			break
		}
		if p1Health <= 0 || p2Health <= 0 {
			break
		}

		plan1 := c1.RunTurn(ctx, g, p1Health, p2Health, sp1, mp1, mp2, turn)
		applyAttack(g, plan1.Attack, 0)

		reflected := reflectMap(g)
		plan2 := c2.RunTurn(ctx, reflected, p2Health, p1Health, sp2, mp2, mp1, turn)
		applyAttack(reflected, plan2.Attack, 0)
		g = reflectMap(reflected)

		sim := simulate.New()
		res := sim.RunTurn(g, p1Health, p2Health)
		p1Health, p2Health = res.MyHealth, res.OppHealth

		sp1 += incomeSP
		mp1 += incomeMP
		sp2 += incomeSP
		mp2 += incomeMP

		if repo != nil && matchID != "" {
			if data, err := json.Marshal(summarizeRound(g, p1Health, p2Health)); err == nil {
				_ = repo.SaveRound(ctx, matchID, turn, data)
			}
		}
	}

	winner := -1
	switch {
	case p1Health <= 0 && p2Health > 0:
		winner = 1
	case p2Health <= 0 && p1Health > 0:
		winner = 0
	case p1Health > p2Health:
		winner = 0
	case p2Health > p1Health:
		winner = 1
	}

	if repo != nil && matchID != "" {
		if err := repo.FinishMatch(ctx, matchID, winner, turn, p1Health, p2Health); err != nil {
			log.Warn().Err(err).Msg("finish match record failed")
		}
	}

	return outcome{winner: winner, turns: turn, finalP1Health: p1Health, finalP2Health: p2Health}
}

func applyAttack(g *gamemap.GameMap, plan *candidates.Plan, owner int) {
	if plan == nil {
		return
	}
	for _, sp := range plan.Spawns {
		for i := 0; i < sp.Count; i++ {
			if u, err := g.AddUnit(sp.Kind, sp.Cell, owner, false); err == nil && sp.Kind.IsMobile() {
				u.TargetEdge = sp.TargetEdge
			}
		}
	}
}

// reflectMap returns a fresh GameMap with every unit's cell reflected
// (spec.md §6's (x,y) -> (27-x,27-y) convention) and owner flipped
// 0<->1, so a controller that only ever reasons about "owner 0 is me"
// can be reused unmodified to play the opposing side.
func reflectMap(g *gamemap.GameMap) *gamemap.GameMap {
	out := gamemap.New()
	for _, u := range g.AllUnits() {
		if !u.IsAlive() {
			continue
		}
		owner := 1 - u.Owner
		cell := arena.Reflect(u.Cell)
		fresh, err := out.AddUnit(u.Kind, cell, owner, u.Upgraded)
		if err != nil {
			continue
		}
		fresh.Health = u.Health
		fresh.MaxHealth = u.MaxHealth
		if u.Kind.IsMobile() {
			fresh.TargetEdge = candidates.MirrorEdge(u.TargetEdge)
		}
	}
	return out
}

type roundSummary struct {
	P1Health float64          `json:"p1_health"`
	P2Health float64          `json:"p2_health"`
	Units    map[string]int   `json:"unit_counts"`
}

func summarizeRound(g *gamemap.GameMap, p1Health, p2Health float64) roundSummary {
	counts := map[string]int{}
	for _, u := range g.AllUnits() {
		if !u.IsAlive() {
			continue
		}
		key := fmt.Sprintf("p%d_%s", u.Owner+1, u.Kind.String())
		counts[key]++
	}
	return roundSummary{P1Health: p1Health, P2Health: p2Health, Units: counts}
}
