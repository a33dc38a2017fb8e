package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"isuumo/internal/domain"
)

// IngestionService bulk-loads listings. A batch is all-or-nothing: one bad record rejects it
// before anything is written, and the store inserts the rest in a single transaction.
type IngestionService struct {
	chairs  domain.ChairRepository
	estates domain.EstateRepository
}

func NewIngestionService(c domain.ChairRepository, e domain.EstateRepository) *IngestionService {
	return &IngestionService{chairs: c, estates: e}
}

func (s *IngestionService) ImportChairs(ctx context.Context, records [][]string) (int, error) {
	cs := make([]domain.Chair, 0, len(records))
	for i, rec := range records {
		c, err := mapChairRecord(rec)
		if err != nil {
			return 0, fmt.Errorf("chair record %d: %w", i+1, err)
		}
		cs = append(cs, c)
	}
	if len(cs) == 0 {
		return 0, nil
	}
	if err := s.chairs.InsertChairs(ctx, cs); err != nil {
		return 0, err
	}
	return len(cs), nil
}

func (s *IngestionService) ImportEstates(ctx context.Context, records [][]string) (int, error) {
	es := make([]domain.Estate, 0, len(records))
	for i, rec := range records {
		e, err := mapEstateRecord(rec)
		if err != nil {
			return 0, fmt.Errorf("estate record %d: %w", i+1, err)
		}
		es = append(es, e)
	}
	if len(es) == 0 {
		return 0, nil
	}
	if err := s.estates.InsertEstates(ctx, es); err != nil {
		return 0, err
	}
	return len(es), nil
}

// BatchOptions shapes a streamed load.
type BatchOptions struct {
	BatchSize        int
	Workers          int
	BatchesPerSecond float64 // 0 means unlimited
	SkipHeader       bool
}

func (o BatchOptions) limiter() *rate.Limiter {
	if o.BatchesPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(o.BatchesPerSecond), 1)
}

// StreamChairs loads a chair CSV in concurrent batches and returns how many rows were inserted.
// Failed batches are skipped and reported together in the error.
func (s *IngestionService) StreamChairs(ctx context.Context, r io.Reader, o BatchOptions) (int, error) {
	return stream(ctx, "chair", r, o, s.ImportChairs)
}

func (s *IngestionService) StreamEstates(ctx context.Context, r io.Reader, o BatchOptions) (int, error) {
	return stream(ctx, "estate", r, o, s.ImportEstates)
}

func stream(ctx context.Context, kind string, r io.Reader, o BatchOptions, load func(context.Context, [][]string) (int, error)) (int, error) {
	if o.BatchSize <= 0 || o.Workers <= 0 {
		return 0, fmt.Errorf("batch size and workers must be positive")
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // the mappers check column counts

	var (
		sem  = semaphore.NewWeighted(int64(o.Workers))
		lim  = o.limiter()
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
		errs []error
	)
	dispatch := func(n int, batch [][]string) error {
		if err := lim.Wait(ctx); err != nil {
			return err
		}
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			inserted, err := load(ctx, batch)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn().Str("kind", kind).Int("batch", n).Err(err).Msg("batch rejected")
				errs = append(errs, fmt.Errorf("%s batch %d: %w", kind, n, err))
				return
			}
			done += inserted
			log.Debug().Str("kind", kind).Int("batch", n).Int("rows", inserted).Msg("batch loaded")
		}()
		return nil
	}

	var (
		batch   = make([][]string, 0, o.BatchSize)
		n       int
		readErr error
	)
	for first := true; ; first = false {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			readErr = fmt.Errorf("read %s csv: %w", kind, err)
			break
		}
		if first && o.SkipHeader {
			continue
		}
		batch = append(batch, rec)
		if len(batch) == o.BatchSize {
			n++
			if readErr = dispatch(n, batch); readErr != nil {
				break
			}
			batch = make([][]string, 0, o.BatchSize)
		}
	}
	if readErr == nil && len(batch) > 0 {
		n++
		readErr = dispatch(n, batch)
	}
	wg.Wait()

	if readErr != nil {
		errs = append(errs, readErr)
	}
	return done, errors.Join(errs...)
}
