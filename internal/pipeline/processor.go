package pipeline

import (
	"context"
	"math/rand"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/katkatprog/sleepApp-sub000/internal/models"
	"github.com/katkatprog/sleepApp-sub000/pkg/errors"
	"github.com/katkatprog/sleepApp-sub000/pkg/metrics"
)

// Disposition classifies what a failure means for the rest of a run.
type Disposition int

const (
	// Continue: the item succeeded, move to the next one.
	Continue Disposition = iota
	// SkipItem: the item alone is bad; the rest of the run proceeds.
	SkipItem
	// AbortRun: the external world is failing; stop the whole run and
	// let the next scheduled invocation retry.
	AbortRun
)

// disposition maps error codes to run control. External-service
// failures abort: a failing generation or synthesis backend would fail
// every remaining item too, and the queue survives untouched for the
// next run.
func disposition(err error) Disposition {
	if err == nil {
		return Continue
	}
	switch errors.GetCode(err) {
	case errors.CodeValidation, errors.CodeDuplicateRequest:
		return SkipItem
	default:
		return AbortRun
	}
}

// Processor is the batch entry point: it drains one page of the pending
// queue and always produces the two untargeted daily artifacts.
// Processing is strictly sequential to preserve FIFO fairness and to
// keep the rate-sensitive external services at one request at a time.
type Processor struct {
	db              *gorm.DB
	generator       *WordListGenerator
	dispatcher      Dispatcher
	recorder        *ArtifactRecorder
	rng             *rand.Rand
	met             *metrics.Pipeline
	log             *zap.Logger
	recordsPerBatch int
}

func NewProcessor(
	db *gorm.DB,
	generator *WordListGenerator,
	dispatcher Dispatcher,
	recorder *ArtifactRecorder,
	rng *rand.Rand,
	met *metrics.Pipeline,
	log *zap.Logger,
	recordsPerBatch int,
) *Processor {
	return &Processor{
		db:              db,
		generator:       generator,
		dispatcher:      dispatcher,
		recorder:        recorder,
		rng:             rng,
		met:             met,
		log:             log,
		recordsPerBatch: recordsPerBatch,
	}
}

// Run executes one batch: DrainRequestQueue then GenerateDailyArtifacts.
// Queue rows are deleted only after every selected request succeeded;
// an abort leaves them queued for the next invocation.
func (p *Processor) Run(ctx context.Context) error {
	p.log.Info("batch run started", zap.Int("recordsPerBatch", p.recordsPerBatch))

	if total, err := models.CountPendingRequests(p.db); err == nil {
		p.met.QueueLength.Set(float64(total))
	}

	if err := p.drainRequestQueue(ctx); err != nil {
		p.met.BatchRuns.WithLabelValues("aborted").Inc()
		return err
	}
	if err := p.generateDailyArtifacts(ctx); err != nil {
		p.met.BatchRuns.WithLabelValues("aborted").Inc()
		return err
	}

	p.met.BatchRuns.WithLabelValues("ok").Inc()
	p.log.Info("batch run finished")
	return nil
}

func (p *Processor) drainRequestQueue(ctx context.Context) error {
	requests, err := models.FetchOldestPendingRequests(p.db, p.recordsPerBatch)
	if err != nil {
		return errors.Wrap(err, "failed to read pending queue")
	}
	p.log.Info("draining request queue", zap.Int("selected", len(requests)))

	processed := make([]uint, 0, len(requests))
	for i := range requests {
		req := &requests[i]
		err := p.produce(ctx, req.Theme, req.VoiceGender, req)
		switch disposition(err) {
		case Continue:
			processed = append(processed, req.UserID)
			p.met.RequestsProcessed.Inc()
			p.met.ArtifactsCreated.WithLabelValues("requested").Inc()
		case SkipItem:
			p.log.Warn("skipping queued request",
				zap.Uint("userId", req.UserID),
				zap.Error(err))
		case AbortRun:
			return errors.Wrapf(err, "aborting run at queue position %d", i)
		}
	}

	if err := models.DeletePendingRequestsByUserIDs(p.db, processed); err != nil {
		return errors.Wrap(err, "failed to delete processed requests")
	}
	return nil
}

// generateDailyArtifacts always produces one male and one female
// untargeted track, independent of queue state.
func (p *Processor) generateDailyArtifacts(ctx context.Context) error {
	for _, gender := range []string{models.GenderMale, models.GenderFemale} {
		if err := p.produce(ctx, "", gender, nil); err != nil {
			return errors.Wrapf(err, "daily artifact (%s) failed", gender)
		}
		p.met.ArtifactsCreated.WithLabelValues("daily").Inc()
	}
	return nil
}

// produce runs the full chain for one track: generate words, double and
// shuffle, encode markup, dispatch synthesis, record the artifact.
func (p *Processor) produce(ctx context.Context, theme, voiceGender string, req *models.PendingRequest) error {
	words, err := p.generator.Generate(ctx, theme)
	if err != nil {
		return err
	}

	shuffled := Shuffle(p.rng, Double(words))
	markup := EncodeMarkup(shuffled)
	voice := SelectVoice(voiceGender, p.rng)

	location, err := p.dispatcher.Submit(ctx, markup, voice)
	if err != nil {
		return err
	}

	if err := p.recorder.Record(location, voiceGender, req); err != nil {
		return errors.Wrap(err, "failed to record artifact")
	}

	p.log.Info("synthesis dispatched",
		zap.String("voice", voice),
		zap.String("location", location),
		zap.Bool("daily", req == nil))
	return nil
}
