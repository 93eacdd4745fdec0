package vision

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sync"

	"gocv.io/x/gocv"

	"cardscan/pkg/scan"
)

// Tuned against real card photos: ~2000 ORB features characterize a card face
// well, and Hamming distances under 250 separate true correspondences from
// noise at that feature count.
const (
	orbFeatures        = 2000
	goodMatchThreshold = 250
)

// maxScoreWorkers bounds concurrent candidate scoring. Each worker holds its
// own detector and matcher plus one decoded reference image.
const maxScoreWorkers = 4

// Options control a ranking invocation.
type Options struct {
	Features  int     // target ORB keypoints per image
	Threshold float64 // max Hamming distance counted as a good match
	Workers   int     // concurrent candidate scorers, 0 picks from NumCPU
}

// DefaultOptions returns the production tuning.
func DefaultOptions() Options {
	return Options{Features: orbFeatures, Threshold: goodMatchThreshold}
}

// Matcher scores candidate reference images against a card photo using ORB
// keypoints and one-to-one brute-force Hamming matching. Detectors and
// matchers are constructed per invocation, never shared, so a single Matcher
// is safe for concurrent requests.
type Matcher struct {
	opts Options
}

var _ scan.Reranker = (*Matcher)(nil)

// NewMatcher returns a Matcher, filling zero options from DefaultOptions.
func NewMatcher(opts Options) *Matcher {
	def := DefaultOptions()
	if opts.Features <= 0 {
		opts.Features = def.Features
	}
	if opts.Threshold <= 0 {
		opts.Threshold = def.Threshold
	}
	return &Matcher{opts: opts}
}

// Rank implements scan.Reranker.
func (m *Matcher) Rank(ctx context.Context, userImage []byte, refs []scan.RefImage) (string, error) {
	best, _, err := m.RankScores(ctx, userImage, refs)
	return best, err
}

// RankScores scores every candidate and returns the winner id together with
// the per-candidate scores for diagnostics. An empty winner with a nil error
// means no candidate could be scored (or the photo had no features) and the
// caller should keep its unranked candidate set. A photo that cannot be
// decoded fails the whole request with scan.ErrImageDecode.
func (m *Matcher) RankScores(ctx context.Context, userImage []byte, refs []scan.RefImage) (string, []Score, error) {
	userMat, err := gocv.IMDecode(userImage, gocv.IMReadGrayScale)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", scan.ErrImageDecode, err)
	}
	defer userMat.Close()
	if userMat.Empty() {
		return "", nil, scan.ErrImageDecode
	}

	userDesc, nkp := m.describe(userMat)
	defer userDesc.Close()
	if userDesc.Empty() {
		log.Printf("SCAN photo yielded no descriptors, keeping unranked set")
		return "", nil, nil
	}
	log.Printf("SCAN photo descriptors ready (%d keypoints), scoring %d candidates", nkp, len(refs))

	scores := make([]Score, len(refs))
	for i, ref := range refs {
		scores[i] = Score{ID: ref.ID}
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < m.workerCount(len(refs)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				scores[i].Good, scores[i].Scored = m.scoreCandidate(userDesc, refs[i].Path)
			}
		}()
	}
	for i := range refs {
		if ctx.Err() != nil {
			break
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return "", scores, err
	}

	best, ok := pickBest(scores)
	if !ok {
		log.Printf("SCAN no candidate could be scored, keeping unranked set")
		return "", scores, nil
	}
	return best, scores, nil
}

// describe runs ORB detection on a grayscale Mat. The caller owns the
// returned descriptor Mat.
func (m *Matcher) describe(img gocv.Mat) (gocv.Mat, int) {
	orb := gocv.NewORBWithParams(m.opts.Features, 1.2, 8, 31, 0, 2, gocv.ORBScoreTypeHarris, 31, 20)
	defer orb.Close()
	mask := gocv.NewMat()
	defer mask.Close()
	kps, desc := orb.DetectAndCompute(img, mask)
	return desc, len(kps)
}

// scoreCandidate counts good matches between the photo descriptors and one
// reference image. The bool reports whether the candidate was scorable at
// all; unreadable or featureless references are skipped, they do not compete
// as zero.
func (m *Matcher) scoreCandidate(userDesc gocv.Mat, path string) (int, bool) {
	img := gocv.IMRead(path, gocv.IMReadGrayScale)
	defer img.Close()
	if img.Empty() {
		log.Printf("SKIP unreadable reference image %s", path)
		return 0, false
	}

	desc, _ := m.describe(img)
	defer desc.Close()
	if desc.Empty() {
		log.Printf("SKIP featureless reference image %s", path)
		return 0, false
	}

	matcher := gocv.NewBFMatcherWithParams(gocv.NormHamming, true)
	defer matcher.Close()

	good := 0
	for _, dm := range matcher.Match(userDesc, desc) {
		if dm.Distance < m.opts.Threshold {
			good++
		}
	}
	return good, true
}

func (m *Matcher) workerCount(n int) int {
	w := m.opts.Workers
	if w <= 0 {
		w = runtime.NumCPU()
	}
	if w > maxScoreWorkers {
		w = maxScoreWorkers
	}
	if w > n {
		w = n
	}
	if w < 1 {
		w = 1
	}
	return w
}
