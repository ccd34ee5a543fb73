package app

import (
	"fmt"

	"stockcast/domain/alert"
)

// SolutionScorer ranks handling plans with a weighted multi-criteria score:
// feasibility, cost, time and risk, each 0-100.
type SolutionScorer struct {
	weights alert.ScoreWeights
}

// NewSolutionScorer creates a scorer with the default weights
func NewSolutionScorer() *SolutionScorer {
	return &SolutionScorer{weights: alert.DefaultScoreWeights()}
}

var feasibilityByStrategy = map[alert.Strategy]float64{
	alert.StrategyUrgentPurchase:  80,
	alert.StrategySubstitute:      60,
	alert.StrategyTransfer:        70,
	alert.StrategyPartialDelivery: 85,
	alert.StrategyReschedule:      90,
}

// Score fills in the four sub-scores and the weighted composite on the plan.
// The alert supplies the cost-impact context.
func (s *SolutionScorer) Score(plan *alert.HandlingPlan, a *alert.ShortageAlert) {
	plan.FeasibilityScore = s.feasibilityScore(plan.Strategy)
	plan.CostScore = s.costScore(plan.EstimatedCost, a.EstimatedCost)
	plan.TimeScore = s.timeScore(plan.EstimatedLeadTime)
	plan.RiskScore = s.riskScore(len(plan.Risks))

	plan.Weights = s.weights
	plan.AIScore = s.weights.Feasibility*plan.FeasibilityScore +
		s.weights.Cost*plan.CostScore +
		s.weights.Time*plan.TimeScore +
		s.weights.Risk*plan.RiskScore

	plan.ScoreExplanation = fmt.Sprintf(
		"feasibility %.0f x %.1f + cost %.0f x %.1f + time %.0f x %.1f + risk %.0f x %.1f = %.1f",
		plan.FeasibilityScore, s.weights.Feasibility,
		plan.CostScore, s.weights.Cost,
		plan.TimeScore, s.weights.Time,
		plan.RiskScore, s.weights.Risk,
		plan.AIScore)
}

func (s *SolutionScorer) feasibilityScore(strategy alert.Strategy) float64 {
	if score, ok := feasibilityByStrategy[strategy]; ok {
		return score
	}
	return 50
}

func (s *SolutionScorer) costScore(planCost, alertImpact float64) float64 {
	if planCost <= 0 || alertImpact == 0 {
		return 100
	}
	ratio := planCost / alertImpact
	switch {
	case ratio < 0.5:
		return 100
	case ratio < 1.0:
		return 80
	case ratio < 1.5:
		return 60
	default:
		return 40
	}
}

func (s *SolutionScorer) timeScore(leadTimeDays int) float64 {
	switch {
	case leadTimeDays <= 0:
		return 100
	case leadTimeDays <= 3:
		return 90
	case leadTimeDays <= 7:
		return 70
	case leadTimeDays <= 14:
		return 50
	default:
		return 30
	}
}

func (s *SolutionScorer) riskScore(riskCount int) float64 {
	switch {
	case riskCount == 0:
		return 100
	case riskCount <= 2:
		return 80
	case riskCount <= 4:
		return 60
	default:
		return 40
	}
}
