package model

import "time"

// SweepResultsCap bounds the per-transaction detail returned by a sweep so
// the cron response cannot grow without bound.
const SweepResultsCap = 50

type SweepOutcome string

const (
	SweepActivated SweepOutcome = "activated"
	SweepSkipped   SweepOutcome = "skipped"
	SweepErrored   SweepOutcome = "errored"
)

type SweepResult struct {
	TransactionID string       `json:"transactionId"`
	Outcome       SweepOutcome `json:"outcome"`
	Detail        string       `json:"detail,omitempty"`
}

// SweepSummary is the structured result of one sweeper run.
type SweepSummary struct {
	Total     int           `json:"totalTransactions"`
	Activated int           `json:"activated"`
	Skipped   int           `json:"skipped"`
	Errors    int           `json:"errors"`
	Duration  time.Duration `json:"duration"`
	Results   []SweepResult `json:"results"`
}

// Record tallies one outcome, capping stored detail at SweepResultsCap.
func (s *SweepSummary) Record(txID string, outcome SweepOutcome, detail string) {
	s.Total++
	switch outcome {
	case SweepActivated:
		s.Activated++
	case SweepSkipped:
		s.Skipped++
	case SweepErrored:
		s.Errors++
	}
	if len(s.Results) < SweepResultsCap {
		s.Results = append(s.Results, SweepResult{TransactionID: txID, Outcome: outcome, Detail: detail})
	}
}
