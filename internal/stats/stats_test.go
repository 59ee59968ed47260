package stats

import (
	"math"
	"testing"
	"time"

	"github.com/swiftbench/swiftbench/internal/model"
)

func TestDescribe_Basic(t *testing.T) {
	d := Describe([]float64{1, 2, 3, 4, 5})

	if d.N != 5 {
		t.Errorf("expected N=5, got %d", d.N)
	}
	if d.Mean != 3 {
		t.Errorf("expected mean=3, got %v", d.Mean)
	}
	if d.Min != 1 || d.Max != 5 {
		t.Errorf("expected min=1 max=5, got min=%v max=%v", d.Min, d.Max)
	}
	if !d.HasStdDev {
		t.Fatal("expected HasStdDev true for n=5")
	}
	if math.Abs(d.StdDev-math.Sqrt(2.5)) > 1e-9 {
		t.Errorf("expected stddev=%v, got %v", math.Sqrt(2.5), d.StdDev)
	}
}

func TestDescribe_SingleSample_NoStdDev(t *testing.T) {
	d := Describe([]float64{42})
	if d.HasStdDev {
		t.Error("expected HasStdDev false for n=1")
	}
	if d.Mean != 42 || d.Median != 42 {
		t.Errorf("expected mean=median=42, got mean=%v median=%v", d.Mean, d.Median)
	}
}

func TestDescribe_Empty(t *testing.T) {
	d := Describe(nil)
	if d.N != 0 {
		t.Errorf("expected N=0, got %d", d.N)
	}
}

func TestQuantile_Boundaries(t *testing.T) {
	xs := []float64{5, 1, 3, 2, 4}

	if got := Quantile(xs, 0); got != 1 {
		t.Errorf("quantile(0) = %v, want 1 (min)", got)
	}
	if got := Quantile(xs, 1); got != 5 {
		t.Errorf("quantile(1) = %v, want 5 (max)", got)
	}
	if got := Quantile(xs, 0.5); got != 3 {
		t.Errorf("quantile(0.5) = %v, want 3 (median)", got)
	}
}

func TestQuantile_Monotonic(t *testing.T) {
	xs := []float64{8, 3, 9, 1, 6, 2, 7, 4, 5}
	prev := Quantile(xs, 0)
	for _, q := range []float64{0.1, 0.25, 0.3, 0.5, 0.6, 0.75, 0.9, 1.0} {
		got := Quantile(xs, q)
		if got < prev {
			t.Errorf("quantile not monotonic: q=%v got %v < prev %v", q, got, prev)
		}
		prev = got
	}
}

func TestQuantile_EvenCountMedianInterpolates(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	if got := Quantile(xs, 0.5); got != 2.5 {
		t.Errorf("expected interpolated median 2.5, got %v", got)
	}
}

func TestDetectOutliers_WideSpread(t *testing.T) {
	// With one outlier among n samples, span/stddev is about sqrt(n), so the
	// default 5x span rule needs at least ~26 samples to fire.
	samples := make([]float64, 0, 30)
	for i := 0; i < 29; i++ {
		samples = append(samples, 1.0+0.01*float64(i%3))
	}
	samples = append(samples, 50.0)
	flags := DetectOutliers(samples, DefaultOutlierThresholds())
	if !flags.WideSpread {
		t.Error("expected WideSpread flag for a sample 50x the rest")
	}
}

func TestDetectOutliers_SlowFirstRun(t *testing.T) {
	samples := []float64{10.0, 1.0, 1.01, 0.99, 1.02, 1.0}
	flags := DetectOutliers(samples, DefaultOutlierThresholds())
	if !flags.SlowFirstRun {
		t.Error("expected SlowFirstRun flag when the first sample dwarfs the rest")
	}
	if flags.FastFirstRun {
		t.Error("did not expect FastFirstRun")
	}
}

func TestDetectOutliers_NoFlagsOnUniformSamples(t *testing.T) {
	samples := []float64{1.0, 1.01, 0.99, 1.0, 1.02}
	flags := DetectOutliers(samples, DefaultOutlierThresholds())
	if flags.WideSpread || flags.SlowFirstRun || flags.FastFirstRun {
		t.Errorf("expected no outlier flags on uniform samples, got %+v", flags)
	}
}

func TestComputeStats(t *testing.T) {
	samples := []model.TimingSample{
		{Wall: 100 * time.Millisecond, User: 80 * time.Millisecond, System: 10 * time.Millisecond},
		{Wall: 120 * time.Millisecond, User: 90 * time.Millisecond, System: 12 * time.Millisecond},
		{Wall: 110 * time.Millisecond, User: 85 * time.Millisecond, System: 11 * time.Millisecond},
	}
	cs := ComputeStats(samples)

	if cs.N != 3 {
		t.Errorf("expected N=3, got %d", cs.N)
	}
	if !cs.HasStdDev {
		t.Error("expected HasStdDev true for n=3")
	}
	wantMean := 110 * time.Millisecond
	if diff := cs.Mean - wantMean; diff > time.Microsecond || diff < -time.Microsecond {
		t.Errorf("expected mean ~%v, got %v", wantMean, cs.Mean)
	}
}

func TestCompare_ReferenceForcedToOne(t *testing.T) {
	summaries := []Summary{
		{Name: "a", Mean: 1.0, StdDev: 0.1, HasStdDev: true},
		{Name: "b", Mean: 2.0, StdDev: 0.2, HasStdDev: true},
	}
	comps := Compare(summaries, "a")

	if comps[0].Ratio != 1.0 || comps[0].RatioStdDev != 0.0 || !comps[0].IsReference {
		t.Errorf("expected reference ratio forced to 1.0/0.0, got %+v", comps[0])
	}
	if comps[1].Ratio != 2.0 {
		t.Errorf("expected ratio 2.0, got %v", comps[1].Ratio)
	}
	if comps[1].RatioStdDev <= 0 {
		t.Errorf("expected positive propagated ratio stddev, got %v", comps[1].RatioStdDev)
	}
}

func TestCompare_DefaultsToSmallestMean(t *testing.T) {
	summaries := []Summary{
		{Name: "slow", Mean: 5.0, HasStdDev: false},
		{Name: "fast", Mean: 1.0, HasStdDev: false},
	}
	comps := Compare(summaries, "")

	if !comps[1].IsReference {
		t.Error("expected the smallest-mean benchmark to be selected as reference")
	}
	if comps[0].Ratio != 5.0 {
		t.Errorf("expected slow/fast ratio 5.0, got %v", comps[0].Ratio)
	}
}

func TestSortSummaries_MeanTime(t *testing.T) {
	summaries := []Summary{
		{Name: "b", Mean: 3.0},
		{Name: "a", Mean: 1.0},
		{Name: "c", Mean: 2.0},
	}
	order := SortSummaries(summaries, model.SortMeanTime)
	want := []int{1, 2, 0}
	for i, idx := range order {
		if idx != want[i] {
			t.Errorf("position %d: expected index %d, got %d", i, want[i], idx)
		}
	}
}

func TestSortSummaries_Command(t *testing.T) {
	summaries := []Summary{{Mean: 3.0}, {Mean: 1.0}, {Mean: 2.0}}
	order := SortSummaries(summaries, model.SortCommand)
	for i, idx := range order {
		if idx != i {
			t.Errorf("expected identity order for SortCommand, position %d got %d", i, idx)
		}
	}
}

func TestSignificance_IdenticalMeansReportsNoSignificance(t *testing.T) {
	a := Summary{Mean: 1.0, StdDev: 0.05, HasStdDev: true}
	b := Summary{Mean: 1.0, StdDev: 0.05, HasStdDev: true}
	p := Significance(a, b)
	if p < SignificanceThreshold {
		t.Errorf("expected a high p-value for identical means, got %v", p)
	}
}

func TestSignificance_LargeSeparationWithTightStdDevIsSignificant(t *testing.T) {
	a := Summary{Mean: 1.0, StdDev: 0.01, HasStdDev: true}
	b := Summary{Mean: 2.0, StdDev: 0.01, HasStdDev: true}
	p := Significance(a, b)
	if p >= SignificanceThreshold {
		t.Errorf("expected a low p-value for a large, tight separation, got %v", p)
	}
}
