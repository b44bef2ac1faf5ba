package personalization

import (
	"context"
	"fmt"
	"time"

	"github.com/jonesrussell/north-cloud/personalization/internal/domain"
	"github.com/jonesrussell/north-cloud/personalization/internal/logger"
)

// DefaultProductPage is the page id of product detail page clicks.
const DefaultProductPage = "Product-Show"

// Status describes how a ProcessClickStream run ended.
type Status string

// Run statuses.
const (
	StatusDisabled Status = "disabled"
	StatusNoWinner Status = "no_winner"
	StatusUpdated  Status = "updated"
	StatusFailed   Status = "failed"
)

// Outcome is the result of one ProcessClickStream run. Err is set only when
// Status is StatusFailed; in that case nothing was written to the session.
type Outcome struct {
	Status     Status       `json:"status"`
	CategoryID string       `json:"category_id,omitempty"`
	Counts     []TallyEntry `json:"counts,omitempty"`
	Err        error        `json:"-"`
}

// Resolver computes the popular category for a session.
type Resolver struct {
	catalog     Catalog
	prefs       PreferenceStore
	log         logger.Logger
	recorder    Recorder
	productPage string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRecorder sets the metrics recorder.
func WithRecorder(rec Recorder) Option {
	return func(r *Resolver) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// WithProductPage overrides the page id treated as a product detail page.
func WithProductPage(pageID string) Option {
	return func(r *Resolver) {
		if pageID != "" {
			r.productPage = pageID
		}
	}
}

// NewResolver creates a Resolver.
func NewResolver(catalog Catalog, prefs PreferenceStore, log logger.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		catalog:     catalog,
		prefs:       prefs,
		log:         log,
		recorder:    nopRecorder{},
		productPage: DefaultProductPage,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve tallies clicks against the configured interest categories and
// selects the winner. The most recent click, the page currently being
// viewed, is not counted.
func (r *Resolver) Resolve(ctx context.Context, clicks []domain.ClickEvent) (string, *Tally, error) {
	ids, err := r.prefs.CategoryIDs(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("load interest categories: %w", err)
	}

	tally := NewTally(ids)
	if tally.Len() > 0 {
		for i := 0; i < len(clicks)-1; i++ {
			if err := r.countClick(ctx, tally, clicks[i]); err != nil {
				return "", nil, err
			}
		}
	}

	for _, entry := range tally.Entries() {
		r.log.Debug("Interest category count",
			logger.String("category_id", entry.CategoryID),
			logger.Int("count", entry.Count),
		)
	}

	winner, _ := SelectWinner(ids, tally)
	return winner, tally, nil
}

func (r *Resolver) countClick(ctx context.Context, tally *Tally, click domain.ClickEvent) error {
	category, err := r.ExtractCategory(ctx, click)
	if err != nil {
		return err
	}
	if category == nil {
		return nil
	}

	counted, err := r.UpdateTally(ctx, tally, category)
	if err != nil {
		return err
	}
	if counted {
		r.recorder.ClickCounted()
	}
	return nil
}

// ProcessClickStream computes the session's popular category and stores it in
// the session. Failures are logged and reported in the Outcome, never
// returned, so a broken catalog cannot break the shopper's request.
func (r *Resolver) ProcessClickStream(ctx context.Context, sess Session) Outcome {
	start := time.Now()
	outcome := r.process(ctx, sess)
	r.recorder.ObserveRun(outcome.Status, time.Since(start))

	switch outcome.Status {
	case StatusFailed:
		r.log.Error("Popular category processing failed", logger.Error(outcome.Err))
	case StatusUpdated:
		r.recorder.WinnerSelected(outcome.CategoryID)
		r.log.Info("Session personalization updated",
			logger.String("category_id", outcome.CategoryID),
			logger.Any("counts", outcome.Counts),
		)
	case StatusDisabled, StatusNoWinner:
	}

	return outcome
}

func (r *Resolver) process(ctx context.Context, sess Session) Outcome {
	enabled, err := sess.ClickstreamEnabled(ctx)
	if err != nil {
		return failed(fmt.Errorf("check clickstream: %w", err))
	}
	if !enabled {
		return Outcome{Status: StatusDisabled}
	}

	clicks, err := sess.Clicks(ctx)
	if err != nil {
		return failed(fmt.Errorf("load clicks: %w", err))
	}

	winner, tally, err := r.Resolve(ctx, clicks)
	if err != nil {
		return failed(err)
	}

	outcome := Outcome{Status: StatusNoWinner, Counts: tally.Entries()}
	if winner == "" {
		return outcome
	}

	if err := sess.SetPersonalization(ctx, winner); err != nil {
		return failed(fmt.Errorf("store personalization: %w", err))
	}

	outcome.Status = StatusUpdated
	outcome.CategoryID = winner
	return outcome
}

func failed(err error) Outcome {
	return Outcome{Status: StatusFailed, Err: err}
}
