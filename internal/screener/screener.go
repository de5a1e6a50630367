package screener

import (
	"context"
	"sort"
	"time"

	"alpaca-trade-bot-go/internal/config"
	"alpaca-trade-bot-go/internal/market"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RecentBarsFetcher supplies the latest bar per symbol for one chunk of the
// universe.
type RecentBarsFetcher interface {
	GetRecentBars(ctx context.Context, symbols []string, lookback time.Duration) (map[string]market.Bar, error)
}

// Screener ranks a symbol universe by recent traded dollar volume.
type Screener struct {
	fetcher RecentBarsFetcher
	cfg     config.Screener
	logger  *zap.Logger
}

// New creates a screener.
func New(fetcher RecentBarsFetcher, cfg config.Screener, logger *zap.Logger) *Screener {
	return &Screener{fetcher: fetcher, cfg: cfg, logger: logger.Named("screener")}
}

// SelectTopN splits the universe into fixed-size chunks, resolves each chunk
// on a bounded worker pool, and returns the top n symbols by descending
// dollar volume (last close times volume of the latest bar). A chunk whose
// fetch fails contributes nothing; the screen itself never fails on that.
// Equal dollar volumes are broken by symbol ascending, so the ranking does
// not depend on chunk completion order.
func (s *Screener) SelectTopN(ctx context.Context, universe []string, n int) ([]string, error) {
	chunks := chunkSymbols(universe, s.cfg.ChunkSize)
	lookback := time.Duration(s.cfg.LookbackMinutes) * time.Minute

	s.logger.Info("Screening universe",
		zap.Int("symbols", len(universe)),
		zap.Int("chunks", len(chunks)),
		zap.Int("workers", s.cfg.Workers),
	)

	results := make(chan map[string]float64, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, chunk := range chunks {
		g.Go(func() error {
			bars, err := s.fetcher.GetRecentBars(gctx, chunk, lookback)
			if err != nil {
				// This chunk only; the rest of the screen proceeds.
				s.logger.Warn("Chunk fetch failed",
					zap.Int("chunk", i+1),
					zap.Int("of", len(chunks)),
					zap.Error(err),
				)
				return nil
			}

			vols := make(map[string]float64, len(bars))
			for sym, bar := range bars {
				if bar.Close > 0 && bar.Volume > 0 {
					vols[sym] = bar.Close * bar.Volume
				}
			}
			results <- vols
			s.logger.Debug("Chunk done", zap.Int("chunk", i+1), zap.Int("of", len(chunks)))
			return nil
		})
	}

	// Workers never return errors; Wait is the join point before the merge.
	_ = g.Wait()
	close(results)

	// Chunks cover disjoint symbols, so the merge has no key conflicts.
	dollarVol := make(map[string]float64)
	for vols := range results {
		for sym, v := range vols {
			dollarVol[sym] = v
		}
	}

	ranked := make([]string, 0, len(dollarVol))
	for sym := range dollarVol {
		ranked = append(ranked, sym)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if dollarVol[ranked[i]] != dollarVol[ranked[j]] {
			return dollarVol[ranked[i]] > dollarVol[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	s.logger.Info("Screen complete", zap.Int("selected", len(ranked)))
	return ranked, nil
}

func chunkSymbols(symbols []string, size int) [][]string {
	if size <= 0 {
		size = len(symbols)
	}
	var chunks [][]string
	for start := 0; start < len(symbols); start += size {
		end := start + size
		if end > len(symbols) {
			end = len(symbols)
		}
		chunks = append(chunks, symbols[start:end])
	}
	return chunks
}
