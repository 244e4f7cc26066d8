package app

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"repair-bot/internal/domain/analysis"
	"repair-bot/internal/domain/entity"
)

func newTestVerifier(deps VerifierDeps, params analysis.Params) *Verifier {
	if deps.Aligner == nil {
		deps.Aligner = identityAligner{}
	}
	if deps.Meter == nil {
		deps.Meter = brightnessMeter{}
	}
	v := NewVerifier(deps, params, testLogger())
	v.newID = func() string { return "test-id" }
	return v
}

func singleRequest(before, after *image.RGBA) Request {
	return Request{
		References: []entity.Image{img(before)},
		Candidates: []entity.Image{img(after)},
	}
}

func TestVerifier_InputErrors(t *testing.T) {
	v := newTestVerifier(VerifierDeps{Detector: &fakeDetector{}}, analysis.DefaultParams())
	ctx := context.Background()
	some := img(solid(10, 10, dark))

	_, err := v.Verify(ctx, Request{Candidates: []entity.Image{some}})
	require.ErrorIs(t, err, entity.ErrNoReference)

	_, err = v.Verify(ctx, Request{References: []entity.Image{some}})
	require.ErrorIs(t, err, entity.ErrNoCandidates)

	_, err = v.Verify(ctx, Request{References: []entity.Image{some}, Candidates: []entity.Image{{}}})
	require.ErrorIs(t, err, entity.ErrEmptyImage)
}

func TestVerifier_Fixed(t *testing.T) {
	det := &fakeDetector{result: entity.ChangeMap{
		Regions:         []entity.Region{box(20, 20, 80, 80)},
		StructuralScore: 0.9,
	}}
	v := newTestVerifier(VerifierDeps{Detector: det}, analysis.DefaultParams())

	res, err := v.Verify(context.Background(), singleRequest(solid(200, 200, dark), solid(200, 200, bright)))

	require.NoError(t, err)
	require.Equal(t, "test-id", res.ID)
	require.Equal(t, entity.StatusFixed, res.Status)
	require.Equal(t, 1, res.FixedCount)
	require.Len(t, res.Defects, 1)
	require.Equal(t, "defect_1", res.Defects[0].ID)
	require.InDelta(t, 0.65, res.Confidence, 1e-9)
	require.InDelta(t, 9.0, res.Defects[0].AreaPercent, 1e-9)
	require.Equal(t, []float64{0.9}, res.SceneSimilarity)
	require.Equal(t, "All 1 detected defect(s) have been successfully repaired.", res.Summary)
	require.False(t, res.Incomplete)
	require.Empty(t, res.Warnings)
}

func TestVerifier_Partial(t *testing.T) {
	det := &fakeDetector{result: entity.ChangeMap{
		Regions:         []entity.Region{box(10, 10, 60, 60), box(140, 140, 190, 190)},
		StructuralScore: 0.8,
	}}
	v := newTestVerifier(VerifierDeps{Detector: det}, analysis.DefaultParams())
	after := paint(solid(200, 200, dark), image.Rect(0, 0, 100, 200), bright)

	res, err := v.Verify(context.Background(), singleRequest(solid(200, 200, dark), after))

	require.NoError(t, err)
	require.Equal(t, entity.StatusPartial, res.Status)
	require.Equal(t, 1, res.FixedCount)
	require.Len(t, res.Defects, 2)
	require.True(t, res.Defects[0].Best.IsRepair)
	require.False(t, res.Defects[1].Best.IsRepair)
}

func TestVerifier_PicksBestCandidate(t *testing.T) {
	det := &fakeDetector{result: entity.ChangeMap{
		Regions:         []entity.Region{box(20, 20, 80, 80)},
		StructuralScore: 0.9,
	}}
	v := newTestVerifier(VerifierDeps{Detector: det}, analysis.DefaultParams())

	req := Request{
		References: []entity.Image{img(solid(200, 200, dark))},
		Candidates: []entity.Image{
			img(solid(200, 200, dark)),
			img(solid(100, 100, dark)),
			img(solid(400, 400, bright)),
		},
	}
	res, err := v.Verify(context.Background(), req)

	require.NoError(t, err)
	require.Equal(t, entity.StatusFixed, res.Status)
	require.Equal(t, 2, res.Defects[0].BestCandidate)
	require.Equal(t, []int{0, 1, 2}, res.Defects[0].Compared)
	require.EqualValues(t, 1, det.calls.Load())
}

func TestVerifier_NotFixed(t *testing.T) {
	det := &fakeDetector{result: entity.ChangeMap{
		Regions:         []entity.Region{box(20, 20, 80, 80)},
		StructuralScore: 0.9,
	}}
	v := newTestVerifier(VerifierDeps{Detector: det}, analysis.DefaultParams())

	res, err := v.Verify(context.Background(), singleRequest(solid(200, 200, dark), solid(200, 200, dark)))

	require.NoError(t, err)
	require.Equal(t, entity.StatusNotFixed, res.Status)
	require.Zero(t, res.FixedCount)
	require.Equal(t, 0, res.Defects[0].BestCandidate)
}

func TestVerifier_NoDefect(t *testing.T) {
	det := &fakeDetector{result: entity.ChangeMap{StructuralScore: 0.99}}
	v := newTestVerifier(VerifierDeps{Detector: det}, analysis.DefaultParams())

	res, err := v.Verify(context.Background(), singleRequest(solid(200, 200, dark), solid(200, 200, dark)))

	require.NoError(t, err)
	require.Equal(t, entity.StatusNoDefect, res.Status)
	require.Empty(t, res.Defects)
	require.Equal(t, "No significant changes detected between images.", res.Summary)
}

func TestVerifier_FilteredRegionsReportNotFixed(t *testing.T) {
	det := &fakeDetector{result: entity.ChangeMap{
		Regions:         []entity.Region{box(0, 0, 190, 190)},
		StructuralScore: 0.7,
	}}
	v := newTestVerifier(VerifierDeps{Detector: det}, analysis.DefaultParams())

	res, err := v.Verify(context.Background(), singleRequest(solid(200, 200, dark), solid(200, 200, bright)))

	require.NoError(t, err)
	require.Equal(t, entity.StatusNotFixed, res.Status)
	require.Empty(t, res.Defects)
	require.Equal(t, 1, res.DetectedRegions)
}

func TestVerifier_DifferentSceneWarning(t *testing.T) {
	det := &fakeDetector{result: entity.ChangeMap{
		Regions:         []entity.Region{box(20, 20, 80, 80)},
		StructuralScore: 0.2,
	}}
	v := newTestVerifier(VerifierDeps{Detector: det}, analysis.DefaultParams())

	res, err := v.Verify(context.Background(), singleRequest(solid(200, 200, dark), solid(200, 200, bright)))

	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	require.Contains(t, res.Warnings[0], "different locations")
}

func TestVerifier_RequestProposals(t *testing.T) {
	det := &fakeDetector{}
	v := newTestVerifier(VerifierDeps{Detector: det}, analysis.DefaultParams())

	req := singleRequest(solid(200, 200, dark), solid(200, 200, bright))
	req.Proposals = [][]entity.Proposal{{
		{Box: entity.PercentBox{X: 10, Y: 10, W: 30, H: 30}, Description: "rust on the railing"},
		{Box: entity.PercentBox{X: 100, Y: 0, W: 10, H: 10}},
	}}
	res, err := v.Verify(context.Background(), req)

	require.NoError(t, err)
	require.Zero(t, det.calls.Load())
	require.Len(t, res.Defects, 1)
	require.Equal(t, entity.Box{X1: 20, Y1: 20, X2: 80, Y2: 80}, res.Defects[0].Region.Box)
	require.Equal(t, entity.RegionProposed, res.Defects[0].Region.Kind)
	require.Equal(t, "rust on the railing", res.Defects[0].Description)
	require.Equal(t, 1, res.SkippedRegions)
	require.Equal(t, 2, res.DetectedRegions)
	require.Equal(t, entity.StatusFixed, res.Status)
}

func TestVerifier_Proposer(t *testing.T) {
	t.Run("used instead of detector", func(t *testing.T) {
		det := &fakeDetector{}
		proposer := fakeProposer{proposals: []entity.Proposal{
			{Box: entity.PercentBox{X: 25, Y: 25, W: 50, H: 50}, Description: "peeling paint"},
		}}
		v := newTestVerifier(VerifierDeps{Detector: det, Proposer: proposer}, analysis.DefaultParams())

		res, err := v.Verify(context.Background(), singleRequest(solid(200, 200, dark), solid(200, 200, bright)))

		require.NoError(t, err)
		require.Zero(t, det.calls.Load())
		require.Len(t, res.Defects, 1)
		require.Equal(t, entity.Box{X1: 50, Y1: 50, X2: 150, Y2: 150}, res.Defects[0].Region.Box)
		require.Equal(t, "peeling paint", res.Defects[0].Description)
	})

	t.Run("failure falls back to detector", func(t *testing.T) {
		det := &fakeDetector{result: entity.ChangeMap{
			Regions:         []entity.Region{box(20, 20, 80, 80)},
			StructuralScore: 0.9,
		}}
		proposer := fakeProposer{err: errors.New("quota")}
		v := newTestVerifier(VerifierDeps{Detector: det, Proposer: proposer}, analysis.DefaultParams())

		res, err := v.Verify(context.Background(), singleRequest(solid(200, 200, dark), solid(200, 200, bright)))

		require.NoError(t, err)
		require.EqualValues(t, 1, det.calls.Load())
		require.Len(t, res.Defects, 1)
	})
}

func TestVerifier_DetectorFailureIsNotFatal(t *testing.T) {
	det := &fakeDetector{err: entity.ErrVisionDisabled}
	v := newTestVerifier(VerifierDeps{Detector: det}, analysis.DefaultParams())

	res, err := v.Verify(context.Background(), singleRequest(solid(50, 50, dark), solid(50, 50, dark)))

	require.NoError(t, err)
	require.Equal(t, entity.StatusNoDefect, res.Status)
	require.Equal(t, []float64{-1}, res.SceneSimilarity)
	require.NotEmpty(t, res.Warnings)
}

func TestVerifier_TimeoutWithoutCompletedRegions(t *testing.T) {
	params := analysis.DefaultParams()
	params.RequestTimeout = 100 * time.Millisecond
	params.ExternalTimeout = 0

	det := &fakeDetector{result: entity.ChangeMap{
		Regions:         []entity.Region{box(20, 20, 80, 80)},
		StructuralScore: 0.9,
	}}
	judge := fakeJudge{judge: func(ctx context.Context, _, _ entity.Image) (string, error) {
		return blockUntilDone(ctx)
	}}
	v := newTestVerifier(VerifierDeps{Detector: det, Judge: judge}, params)

	_, err := v.Verify(context.Background(), singleRequest(solid(200, 200, dark), solid(200, 200, bright)))

	require.ErrorIs(t, err, entity.ErrVerificationIncomplete)
}

func TestVerifier_TimeoutKeepsFinishedRegions(t *testing.T) {
	params := analysis.DefaultParams()
	params.RequestTimeout = 150 * time.Millisecond
	params.ExternalTimeout = 0

	det := &fakeDetector{result: entity.ChangeMap{
		Regions:         []entity.Region{box(10, 10, 60, 60), box(140, 140, 190, 190)},
		StructuralScore: 0.9,
	}}
	judge := fakeJudge{judge: func(ctx context.Context, _, after entity.Image) (string, error) {
		if meanRed(after) > 128 {
			return "Clearly REPAIRED: fresh paint over the rust.", nil
		}
		return blockUntilDone(ctx)
	}}
	v := newTestVerifier(VerifierDeps{Detector: det, Judge: judge}, params)
	after := paint(solid(200, 200, dark), image.Rect(0, 0, 100, 200), bright)

	res, err := v.Verify(context.Background(), singleRequest(solid(200, 200, dark), after))

	require.NoError(t, err)
	require.True(t, res.Incomplete)
	require.Len(t, res.Defects, 1)
	require.Equal(t, entity.StatusFixed, res.Status)
	require.Equal(t, entity.SourceExternal, res.Defects[0].Best.Source)
	require.InDelta(t, 0.95, res.Defects[0].Best.Confidence, 1e-9)
	require.NotNil(t, res.Defects[0].Semantic)
	require.Contains(t, res.Warnings[len(res.Warnings)-1], "timed out")
}

func TestVerifier_FrameSequenceUsesRelevantFrames(t *testing.T) {
	det := &fakeDetector{result: entity.ChangeMap{
		Regions:         []entity.Region{box(20, 20, 80, 80)},
		StructuralScore: 0.9,
	}}
	// Светлые кадры считаются снятыми в другом месте.
	embedder := fakeEmbedder{embed: func(_ context.Context, i entity.Image) ([]float32, error) {
		if meanRed(i) > 128 {
			return []float32{0, 1}, nil
		}
		return []float32{1, 0}, nil
	}}
	v := newTestVerifier(VerifierDeps{Detector: det, Perceptual: embedder}, analysis.DefaultParams())

	req := Request{
		References: []entity.Image{img(solid(200, 200, dark))},
		Candidates: []entity.Image{
			img(solid(200, 200, bright)),
			img(solid(200, 200, dark)),
			img(solid(200, 200, dark)),
		},
		FrameSequence: true,
	}
	res, err := v.Verify(context.Background(), req)

	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, res.Defects[0].Compared)
}
