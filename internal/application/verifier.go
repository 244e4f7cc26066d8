package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"repair-bot/internal/domain/analysis"
	"repair-bot/internal/domain/entity"
	"repair-bot/internal/domain/port"
)

// Request снимки одной проверки. Proposals, если заданы, содержат готовые
// области для каждого снимка "до" в процентах от его размеров.
type Request struct {
	References    []entity.Image
	Candidates    []entity.Image
	FrameSequence bool
	Proposals     [][]entity.Proposal
}

func (r Request) validate() error {
	if len(r.References) == 0 {
		return entity.ErrNoReference
	}
	if len(r.Candidates) == 0 {
		return entity.ErrNoCandidates
	}
	for i, img := range r.References {
		if img.Empty() {
			return fmt.Errorf("before image %d: %w", i, entity.ErrEmptyImage)
		}
	}
	for i, img := range r.Candidates {
		if img.Empty() {
			return fmt.Errorf("after image %d: %w", i, entity.ErrEmptyImage)
		}
	}
	return nil
}

// ReferenceRegions результат первого этапа для одного снимка "до".
type ReferenceRegions struct {
	Reference       int
	Regions         []entity.Region
	Detected        int     // областей до объединения и фильтрации
	Degenerate      int     // предложенных областей с нулевой площадью
	SceneSimilarity float64 // SSIM с опорным кандидатом, -1 если не считался
	Warnings        []string
}

// MatchResult результат второго этапа.
type MatchResult struct {
	Defects []entity.DefectCandidate
	Skipped int // области без ни одного непустого фрагмента
	Pending int // области, которые не успели оценить
}

// VerifierDeps внешние компоненты конвейера. Proposer, Feature, Perceptual и Judge
// необязательны.
type VerifierDeps struct {
	Aligner    port.Aligner
	Detector   port.ChangeDetector
	Proposer   port.RegionProposer
	Meter      port.SurfaceMeter
	Feature    port.FeatureExtractor
	Perceptual port.FeatureExtractor
	Judge      port.SemanticJudge
}

// Verifier проверяет ремонт в два этапа: поиск областей на паре с опорным
// кандидатом, затем поиск лучшего кандидата для каждой области.
type Verifier struct {
	aligner  port.Aligner
	detector port.ChangeDetector
	proposer port.RegionProposer
	matcher  *CandidateMatcher
	frames   *FrameFilter
	params   analysis.Params
	log      logrus.FieldLogger
	newID    func() string
}

func NewVerifier(deps VerifierDeps, params analysis.Params, log logrus.FieldLogger) *Verifier {
	scorer := NewRepairScorer(deps.Meter, deps.Feature, deps.Perceptual, params, log)
	fuser := NewDecisionFuser(deps.Judge, params, log)

	frameEmbedder := deps.Perceptual
	if frameEmbedder == nil {
		frameEmbedder = deps.Feature
	}

	return &Verifier{
		aligner:  deps.Aligner,
		detector: deps.Detector,
		proposer: deps.Proposer,
		matcher:  NewCandidateMatcher(scorer, fuser, log),
		frames:   NewFrameFilter(frameEmbedder, params.Frames.RelevanceThreshold, params.ExternalTimeout, log),
		params:   params,
		log:      log,
		newID:    uuid.NewString,
	}
}

// Verify выполняет полную проверку. Ошибка возвращается только для некорректного
// запроса и для прерванной проверки, в которой не оценено ни одной области.
func (v *Verifier) Verify(ctx context.Context, req Request) (*entity.AnalysisResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	if v.params.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.params.RequestTimeout)
		defer cancel()
	}

	id := v.newID()
	log := v.log.WithField("analysis", id)
	log.WithFields(logrus.Fields{
		"before": len(req.References),
		"after":  len(req.Candidates),
		"frames": req.FrameSequence,
	}).Info("verification started")

	proposed, err := v.ProposeRegions(ctx, req)
	if err != nil {
		return nil, err
	}

	matched, err := v.MatchRegions(ctx, req, proposed)
	if err != nil {
		return nil, err
	}

	result := v.assemble(id, req, proposed, matched)
	log.WithFields(logrus.Fields{
		"status":     result.Status,
		"defects":    len(result.Defects),
		"fixed":      result.FixedCount,
		"incomplete": result.Incomplete,
	}).Info("verification finished")
	return result, nil
}

// ProposeRegions первый этап: области изменений для каждого снимка "до".
// Источник областей по приоритету: готовые проценты из запроса, внешний детектор,
// сравнение с первым кандидатом.
func (v *Verifier) ProposeRegions(ctx context.Context, req Request) ([]ReferenceRegions, error) {
	out := make([]ReferenceRegions, len(req.References))

	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())
	for i := range req.References {
		g.Go(func() error {
			out[i] = v.proposeFor(ctx, req, i)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrVerificationIncomplete, err)
	}
	return out, nil
}

func (v *Verifier) proposeFor(ctx context.Context, req Request, i int) ReferenceRegions {
	ref := req.References[i]
	out := ReferenceRegions{Reference: i, SceneSimilarity: -1}
	log := v.log.WithField("reference", i)

	if i < len(req.Proposals) && len(req.Proposals[i]) > 0 {
		v.addProposals(&out, ref, req.Proposals[i])
		return out
	}

	anchor := v.View(ctx, ref, req.Candidates[0], 0)

	if v.proposer != nil {
		proposals, err := withTimeout(ctx, v.params.ExternalTimeout, func(ctx context.Context) ([]entity.Proposal, error) {
			return v.proposer.Propose(ctx, ref, anchor.Image)
		})
		if err == nil {
			v.addProposals(&out, ref, proposals)
			log.WithField("regions", len(out.Regions)).Debug("regions proposed externally")
			return out
		}
		log.WithError(err).Warn("region proposer failed, falling back to change detection")
	}

	if v.detector == nil {
		out.Warnings = append(out.Warnings, fmt.Sprintf("before image %d: change detection is not configured", i))
		return out
	}

	cm, err := v.detector.Extract(ctx, ref, anchor.Image)
	if err != nil {
		log.WithError(err).Warn("change detection failed")
		out.Warnings = append(out.Warnings, fmt.Sprintf("before image %d: change detection failed", i))
		return out
	}

	out.SceneSimilarity = cm.StructuralScore
	if cm.StructuralScore < v.params.DifferentSceneSSIM {
		out.Warnings = append(out.Warnings, fmt.Sprintf(
			"before image %d and the first after image may show different locations (similarity %.2f)", i, cm.StructuralScore))
	}

	out.Detected = len(cm.Regions)
	merged := analysis.MergeRegions(cm.Regions, v.params.MergeDistance)
	out.Regions = analysis.FilterByArea(merged, ref.Area(), v.params.Area)

	log.WithFields(logrus.Fields{
		"detected": out.Detected,
		"merged":   len(merged),
		"kept":     len(out.Regions),
		"ssim":     cm.StructuralScore,
		"aligned":  anchor.Aligned,
	}).Debug("regions extracted")
	return out
}

func (v *Verifier) addProposals(out *ReferenceRegions, ref entity.Image, proposals []entity.Proposal) {
	for _, p := range proposals {
		out.Detected++
		r := p.Region(ref.Width(), ref.Height())
		if r.Box.Empty() {
			out.Degenerate++
			continue
		}
		out.Regions = append(out.Regions, r)
	}
}

// View приводит кандидата к размеру опорного снимка и совмещает с ним.
func (v *Verifier) View(ctx context.Context, reference, candidate entity.Image, index int) View {
	resized := candidate.Resize(reference.Width(), reference.Height())
	if v.aligner == nil {
		return View{Index: index, Image: resized}
	}
	aligned, ok := v.aligner.Align(ctx, reference, resized)
	if !ok {
		v.log.WithField("candidate", index).Debug("alignment failed, comparing unaligned")
	}
	return View{Index: index, Image: aligned, Aligned: ok}
}

// MatchRegions второй этап: каждая область сравнивается со всеми подходящими кандидатами.
func (v *Verifier) MatchRegions(ctx context.Context, req Request, proposed []ReferenceRegions) (MatchResult, error) {
	type slot struct {
		reference int
		region    entity.Region
		outcome   analysis.CandidateOutcome
		compared  []int
		found     bool
		done      bool
	}

	var slots []*slot
	for _, p := range proposed {
		for _, r := range p.Regions {
			slots = append(slots, &slot{reference: p.Reference, region: r})
		}
	}

	if len(slots) > 0 {
		g := new(errgroup.Group)
		g.SetLimit(runtime.NumCPU())
		for _, p := range proposed {
			if len(p.Regions) == 0 {
				continue
			}
			ref := req.References[p.Reference]
			views := v.prepareViews(ctx, req, ref)
			compared := make([]int, len(views))
			for i, view := range views {
				compared[i] = view.Index
			}

			for _, s := range slots {
				if s.reference != p.Reference {
					continue
				}
				g.Go(func() error {
					if ctx.Err() != nil {
						return nil
					}
					best, found, err := v.matcher.BestMatch(ctx, ref, s.region, views)
					if err != nil {
						return nil
					}
					s.outcome, s.found, s.compared, s.done = best, found, compared, true
					return nil
				})
			}
		}
		_ = g.Wait()
	}

	var res MatchResult
	for _, s := range slots {
		switch {
		case !s.done:
			res.Pending++
		case !s.found:
			res.Skipped++
		default:
			ref := req.References[s.reference]
			res.Defects = append(res.Defects, entity.DefectCandidate{
				ID:             fmt.Sprintf("defect_%d", len(res.Defects)+1),
				ReferenceIndex: s.reference,
				Region:         s.region,
				Description:    s.region.Description,
				AreaPercent:    s.region.AreaPercent(ref.Area()),
				Compared:       s.compared,
				BestCandidate:  s.outcome.Index,
				Best:           s.outcome.Verdict,
				HeuristicScore: s.outcome.Heuristic.Score,
				Indicators:     s.outcome.Indicators,
				Semantic:       s.outcome.Semantic,
			})
		}
	}

	if res.Pending > 0 && len(res.Defects) == 0 && res.Skipped == 0 {
		cause := ctx.Err()
		if cause == nil {
			cause = errors.New("no region finished")
		}
		return MatchResult{}, fmt.Errorf("%w: %v", entity.ErrVerificationIncomplete, cause)
	}
	return res, nil
}

// prepareViews готовит кандидатов для одного снимка "до", при необходимости
// отбрасывая нерелевантные кадры последовательности.
func (v *Verifier) prepareViews(ctx context.Context, req Request, ref entity.Image) []View {
	indices := make([]int, len(req.Candidates))
	for i := range indices {
		indices[i] = i
	}
	if req.FrameSequence {
		indices = v.frames.Filter(ctx, ref, req.Candidates)
	}

	views := make([]View, len(indices))
	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())
	for i, idx := range indices {
		g.Go(func() error {
			views[i] = v.View(ctx, ref, req.Candidates[idx], idx)
			return nil
		})
	}
	_ = g.Wait()
	return views
}

func (v *Verifier) assemble(id string, req Request, proposed []ReferenceRegions, matched MatchResult) *entity.AnalysisResult {
	result := &entity.AnalysisResult{
		ID:              id,
		Defects:         matched.Defects,
		SkippedRegions:  matched.Skipped,
		SceneSimilarity: make([]float64, len(req.References)),
		Incomplete:      matched.Pending > 0,
	}

	for _, p := range proposed {
		result.DetectedRegions += p.Detected
		result.SkippedRegions += p.Degenerate
		result.SceneSimilarity[p.Reference] = p.SceneSimilarity
		result.Warnings = append(result.Warnings, p.Warnings...)
	}
	if result.Incomplete {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("verification timed out: %d region(s) were not evaluated", matched.Pending))
	}

	verdicts := make([]entity.Verdict, len(result.Defects))
	for i, d := range result.Defects {
		verdicts[i] = d.Best
	}
	result.FixedCount = analysis.CountRepaired(verdicts)
	result.Status = analysis.Aggregate(verdicts)
	result.Summary = analysis.Summary(result.FixedCount, len(result.Defects))

	if len(result.Defects) == 0 && (result.DetectedRegions > 0 || result.SkippedRegions > 0) {
		result.Status = entity.StatusNotFixed
		result.Summary = analysis.FilteredSummary(result.DetectedRegions)
	}

	result.Confidence = overallConfidence(result.Defects)
	return result
}

// overallConfidence средняя уверенность по отремонтированным областям,
// а если таких нет, по всем.
func overallConfidence(defects []entity.DefectCandidate) float64 {
	var sumFixed, sumAll float64
	fixed := 0
	for _, d := range defects {
		sumAll += d.Best.Confidence
		if d.Best.IsRepair {
			sumFixed += d.Best.Confidence
			fixed++
		}
	}
	switch {
	case fixed > 0:
		return sumFixed / float64(fixed)
	case len(defects) > 0:
		return sumAll / float64(len(defects))
	default:
		return 0
	}
}
