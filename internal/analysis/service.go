package analysis

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/techscope/hypecycle/internal/phase"
	"github.com/techscope/hypecycle/internal/storage"
	"github.com/techscope/hypecycle/pkg/types"
)

// Service runs the full analysis pipeline for one technology: load stored
// records, extract a metrics snapshot, score it against the phase rules,
// and persist the verdict. Streams are analyzed independently; no stream's
// verdict ever feeds another's.
type Service struct {
	records  storage.RecordStore
	analyses storage.AnalysisStore

	paperEngine   *phase.Engine[*types.PaperSnapshot]
	patentEngine  *phase.Engine[*types.PatentSnapshot]
	socialEngine  *phase.Engine[*types.SocialSnapshot]
	newsEngine    *phase.Engine[*types.NewsSnapshot]
	financeEngine *phase.Engine[*types.FinanceSnapshot]

	minPapers int
	opts      []Option
	settings
}

// NewService wires extractors and engines for every stream. The options
// are shared with the extractors, so a pinned clock flows through the
// whole pipeline.
func NewService(records storage.RecordStore, analyses storage.AnalysisStore, thresholds phase.Thresholds, opts ...Option) *Service {
	s := newSettings(opts)
	return &Service{
		records:       records,
		analyses:      analyses,
		paperEngine:   phase.NewPaperEngine(thresholds.Paper, s.log),
		patentEngine:  phase.NewPatentEngine(thresholds.Patent, s.log),
		socialEngine:  phase.NewSocialEngine(thresholds.Social, s.log),
		newsEngine:    phase.NewNewsEngine(thresholds.News, s.log),
		financeEngine: phase.NewFinanceEngine(thresholds.Finance, s.log),
		minPapers:     thresholds.Paper.MinPapersForAnalysis,
		opts:          opts,
		settings:      s,
	}
}

// AnalyzeStream analyzes one evidence stream for a technology and persists
// the result. Data shortfalls surface as InsufficientDataError or
// ErrNoRecords; both leave any previously stored verdict untouched.
func (s *Service) AnalyzeStream(ctx context.Context, technologyID int64, stream types.Stream) (*types.Analysis, error) {
	var (
		verdict  types.Verdict
		snapshot any
		count    int
		err      error
	)

	switch stream {
	case types.StreamPaper:
		verdict, snapshot, count, err = s.analyzePapers(ctx, technologyID)
	case types.StreamPatent:
		verdict, snapshot, count, err = s.analyzePatents(ctx, technologyID)
	case types.StreamSocial:
		verdict, snapshot, count, err = s.analyzeSocial(ctx, technologyID)
	case types.StreamNews:
		verdict, snapshot, count, err = s.analyzeNews(ctx, technologyID)
	case types.StreamFinance:
		verdict, snapshot, count, err = s.analyzeFinance(ctx, technologyID)
	default:
		return nil, fmt.Errorf("analysis: unknown stream %q", stream)
	}
	if err != nil {
		return nil, err
	}

	analysis := &types.Analysis{
		RunID:           uuid.NewString(),
		TechnologyID:    technologyID,
		Stream:          stream,
		Phase:           verdict.Phase,
		Confidence:      verdict.Confidence,
		Scores:          verdict.Scores,
		Rationale:       verdict.Rationale,
		Snapshot:        snapshot,
		RecordsAnalyzed: count,
		AnalyzedAt:      s.now().UTC(),
	}
	if err := s.analyses.SaveAnalysis(ctx, analysis); err != nil {
		return nil, fmt.Errorf("analysis: failed to persist verdict: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"technology_id": technologyID,
		"stream":        stream,
		"phase":         verdict.Phase,
		"confidence":    verdict.Confidence,
		"records":       count,
	}).Info("stream analyzed")
	return analysis, nil
}

// AnalyzeAll runs every stream for a technology. Streams short on data are
// skipped and reported in the returned map; storage failures abort the run.
func (s *Service) AnalyzeAll(ctx context.Context, technologyID int64) ([]types.Analysis, map[types.Stream]error, error) {
	var results []types.Analysis
	skipped := make(map[types.Stream]error)

	for _, stream := range types.AllStreams {
		analysis, err := s.AnalyzeStream(ctx, technologyID, stream)
		if err != nil {
			if IsInsufficientData(err) || err == ErrNoRecords {
				s.log.WithFields(logrus.Fields{
					"technology_id": technologyID,
					"stream":        stream,
				}).WithError(err).Warn("skipping stream")
				skipped[stream] = err
				continue
			}
			return results, skipped, err
		}
		results = append(results, *analysis)
	}
	return results, skipped, nil
}

func (s *Service) analyzePapers(ctx context.Context, technologyID int64) (types.Verdict, any, int, error) {
	papers, err := s.records.ListPapers(ctx, technologyID)
	if err != nil {
		return types.Verdict{}, nil, 0, err
	}
	if len(papers) == 0 {
		return types.Verdict{}, nil, 0, ErrNoRecords
	}
	// The paper extractor has no floor of its own; a thin corpus produces
	// statistically meaningless velocity trends, so the pipeline enforces
	// one here.
	if len(papers) < s.minPapers {
		return types.Verdict{}, nil, 0, &InsufficientDataError{
			Stream: types.StreamPaper, Found: len(papers), Required: s.minPapers,
		}
	}

	snap, err := NewPaperExtractor(s.opts...).Extract(papers)
	if err != nil {
		return types.Verdict{}, nil, 0, err
	}
	return s.paperEngine.DeterminePhase(snap), snap, len(papers), nil
}

func (s *Service) analyzePatents(ctx context.Context, technologyID int64) (types.Verdict, any, int, error) {
	patents, err := s.records.ListPatents(ctx, technologyID)
	if err != nil {
		return types.Verdict{}, nil, 0, err
	}
	snap, err := NewPatentExtractor(s.opts...).Extract(patents)
	if err != nil {
		return types.Verdict{}, nil, 0, err
	}
	return s.patentEngine.DeterminePhase(snap), snap, len(patents), nil
}

func (s *Service) analyzeSocial(ctx context.Context, technologyID int64) (types.Verdict, any, int, error) {
	posts, err := s.records.ListPosts(ctx, technologyID)
	if err != nil {
		return types.Verdict{}, nil, 0, err
	}
	snap, err := NewSocialExtractor(s.opts...).Extract(posts)
	if err != nil {
		return types.Verdict{}, nil, 0, err
	}
	return s.socialEngine.DeterminePhase(snap), snap, len(posts), nil
}

func (s *Service) analyzeNews(ctx context.Context, technologyID int64) (types.Verdict, any, int, error) {
	articles, err := s.records.ListArticles(ctx, technologyID)
	if err != nil {
		return types.Verdict{}, nil, 0, err
	}
	snap, err := NewNewsExtractor(s.opts...).Extract(articles)
	if err != nil {
		return types.Verdict{}, nil, 0, err
	}
	return s.newsEngine.DeterminePhase(snap), snap, len(articles), nil
}

func (s *Service) analyzeFinance(ctx context.Context, technologyID int64) (types.Verdict, any, int, error) {
	bars, err := s.records.ListPriceBars(ctx, technologyID)
	if err != nil {
		return types.Verdict{}, nil, 0, err
	}
	info, err := s.records.ListStockInfo(ctx, technologyID)
	if err != nil {
		return types.Verdict{}, nil, 0, err
	}
	snap, err := NewFinanceExtractor(s.opts...).Extract(bars, info)
	if err != nil {
		return types.Verdict{}, nil, 0, err
	}
	return s.financeEngine.DeterminePhase(snap), snap, len(bars), nil
}
