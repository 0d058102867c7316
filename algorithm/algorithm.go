// Package algorithm provides the step selection strategies. Each call
// receives the engine's seeded random source, the execution history, and
// the non-empty enabled step set, and returns one step. Algorithms must
// not retain the random source beyond a call; reproducibility depends on
// every draw coming from the engine-owned source in execution order.
//
// Import rules:
//   - CAN import: model, history, errors, std lib
//   - MUST NOT import: engine
package algorithm

import (
	"math/rand"

	osmoerrors "github.com/osmo-tool/osmo/errors"
	"github.com/osmo-tool/osmo/history"
	"github.com/osmo-tool/osmo/model"
)

// Algorithm chooses the next step from a non-empty enabled set.
type Algorithm interface {
	Choose(r *rand.Rand, h *history.History, steps []*model.Step) (*model.Step, error)
}

// Random selects uniformly among the enabled steps.
type Random struct{}

// Choose picks a uniformly random step.
func (Random) Choose(r *rand.Rand, _ *history.History, steps []*model.Step) (*model.Step, error) {
	if err := checkChoices(steps); err != nil {
		return nil, err
	}
	return steps[r.Intn(len(steps))], nil
}

// Weighted selects proportionally to each step's weight. Weights are
// evaluated fresh on every call, so computed weights may shift the
// distribution between steps.
type Weighted struct{}

// Choose draws a step proportionally to the current weights.
func (Weighted) Choose(r *rand.Rand, _ *history.History, steps []*model.Step) (*model.Step, error) {
	if err := checkChoices(steps); err != nil {
		return nil, err
	}
	weights := make([]float64, len(steps))
	for i, s := range steps {
		w, err := s.CurrentWeight()
		if err != nil {
			return nil, err
		}
		weights[i] = w
	}
	return steps[draw(r, weights)], nil
}

// Balancing deterministically selects the step with the fewest executions
// in the suite so far, breaking ties uniformly at random. With a stable
// enabled set the execution counts stay within one of each other.
type Balancing struct{}

// Choose picks among the least-executed steps.
func (Balancing) Choose(r *rand.Rand, h *history.History, steps []*model.Step) (*model.Step, error) {
	if err := checkChoices(steps); err != nil {
		return nil, err
	}
	minCount := -1
	var ties []*model.Step
	for _, s := range steps {
		count := h.StepCount(s.Name())
		switch {
		case minCount < 0 || count < minCount:
			minCount = count
			ties = ties[:0]
			ties = append(ties, s)
		case count == minCount:
			ties = append(ties, s)
		}
	}
	if len(ties) == 1 {
		return ties[0], nil
	}
	return ties[r.Intn(len(ties))], nil
}

// rescueEpsilon keeps every rescued score strictly positive when the raw
// weight-minus-count scores dip to or below zero.
const rescueEpsilon = 1e-6

// WeightedBalancing combines weights with history-based balancing. Each
// step scores its normalized weight minus its normalized execution count;
// if any score is non-positive, all scores are shifted up so every step
// keeps a strictly positive chance, and the draw is proportional to the
// rescued scores.
type WeightedBalancing struct{}

// Choose draws a step proportionally to the rescued balance scores.
func (WeightedBalancing) Choose(r *rand.Rand, h *history.History, steps []*model.Step) (*model.Step, error) {
	if err := checkChoices(steps); err != nil {
		return nil, err
	}

	weights := make([]float64, len(steps))
	totalWeight := 0.0
	for i, s := range steps {
		w, err := s.CurrentWeight()
		if err != nil {
			return nil, err
		}
		weights[i] = w
		totalWeight += w
	}

	totalSteps := h.TotalSteps()
	scores := make([]float64, len(steps))
	minScore := 0.0
	for i, s := range steps {
		normWeight := weights[i] / totalWeight
		normCount := 0.0
		if totalSteps > 0 {
			normCount = float64(h.StepCount(s.Name())) / float64(totalSteps)
		}
		scores[i] = normWeight - normCount
		if i == 0 || scores[i] < minScore {
			minScore = scores[i]
		}
	}

	if minScore <= 0 {
		shift := -minScore + rescueEpsilon
		for i := range scores {
			scores[i] += shift
		}
	}

	return steps[draw(r, scores)], nil
}

// checkChoices rejects the empty set. The engine never passes one; this
// guards direct algorithm use.
func checkChoices(steps []*model.Step) error {
	if len(steps) == 0 {
		return osmoerrors.ErrEmptyChoice
	}
	return nil
}

// draw returns an index sampled proportionally to the given positive
// values.
func draw(r *rand.Rand, values []float64) int {
	total := 0.0
	for _, v := range values {
		total += v
	}
	x := r.Float64() * total
	for i, v := range values {
		x -= v
		if x < 0 {
			return i
		}
	}
	return len(values) - 1
}
