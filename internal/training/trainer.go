package training

import (
	"fmt"
	"log"
	"math"

	"canteenopt/internal/agent"
	"canteenopt/internal/sim"
)

// Trainer runs the episodic Q-learning loop: strictly sequential, one
// episode at a time, with epsilon decayed once per completed episode.
type Trainer struct {
	Env   *sim.Env
	Agent *agent.Agent

	// MaxSteps caps one episode's length so a misconfigured
	// environment cannot loop forever. Zero means 1000.
	MaxSteps int

	// OnEpisode, when set, observes each completed episode
	OnEpisode func(episode int, reward, epsilon float64)
}

// Result summarizes a training run
type Result struct {
	Episodes       int
	EpisodeRewards []float64
	EpsilonHistory []float64
	BestReward     float64
	QTableStates   int
	FinalEpsilon   float64
}

// Run executes the given number of episodes and returns the history
func (t *Trainer) Run(episodes int) (*Result, error) {
	if episodes <= 0 {
		return nil, fmt.Errorf("episodes must be positive, got %d", episodes)
	}
	maxSteps := t.MaxSteps
	if maxSteps <= 0 {
		maxSteps = 1000
	}

	res := &Result{
		Episodes:   episodes,
		BestReward: math.Inf(-1),
	}

	for ep := 0; ep < episodes; ep++ {
		state, err := t.Env.Reset()
		if err != nil {
			return nil, fmt.Errorf("episode %d: reset: %w", ep+1, err)
		}

		var total float64
		done := false
		for step := 0; !done && step < maxSteps; step++ {
			action := t.Agent.ChooseAction(state)
			next, reward, stepDone, err := t.Env.Step(action)
			if err != nil {
				return nil, fmt.Errorf("episode %d step %d: %w", ep+1, step+1, err)
			}
			t.Agent.Learn(state, action, reward, next, stepDone)
			state = next
			total += reward
			done = stepDone
		}

		t.Agent.DecayEpsilon()
		res.EpisodeRewards = append(res.EpisodeRewards, total)
		res.EpsilonHistory = append(res.EpsilonHistory, t.Agent.Epsilon())
		if total > res.BestReward {
			res.BestReward = total
		}
		if t.OnEpisode != nil {
			t.OnEpisode(ep+1, total, t.Agent.Epsilon())
		}

		if (ep+1)%10 == 0 {
			recent := res.EpisodeRewards[len(res.EpisodeRewards)-10:]
			var sum float64
			for _, r := range recent {
				sum += r
			}
			log.Printf("Episode %d: avg reward (last 10) = %.0f, current = %.0f, epsilon = %.3f",
				ep+1, sum/10, total, t.Agent.Epsilon())
		}
	}

	res.QTableStates = t.Agent.Table().Len()
	res.FinalEpsilon = t.Agent.Epsilon()
	return res, nil
}
