package classifier

import (
	"errors"
	"fmt"
	"math"
)

// Default values for tuneables
const (
	DefaultSmoothing = 1.0
	MinSmoothing     = 1e-10
)

var (
	// ErrEmptyTrainingSet is returned when Fit is called without any documents.
	ErrEmptyTrainingSet = errors.New("classifier: empty training set")
	// ErrInvalidSmoothing is returned for a negative, NaN or infinite smoothing parameter.
	ErrInvalidSmoothing = errors.New("classifier: smoothing must be finite and not negative")
)

// ShapeMismatchError is returned when vectors and labels don't line up, or a
// vector's dimension differs from the fitted vocabulary size.
type ShapeMismatchError struct {
	What string
	Want int
	Got  int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("classifier: %s mismatch: want %d, got %d", e.What, e.Want, e.Got)
}

// MultinomialNB is a multinomial naive Bayes classifier over token-count
// vectors with additive smoothing.
type MultinomialNB struct {
	store     Store
	smoothing float64

	dim           int
	labels        []string    // first-seen order
	logPrior      []float64   // per label
	logLikelihood [][]float64 // per label, per feature
}

// NewMultinomialNB returns an unfitted classifier that aggregates its counts
// in store. Smoothing below MinSmoothing is raised to MinSmoothing.
func NewMultinomialNB(store Store, smoothing float64) (*MultinomialNB, error) {
	if smoothing < 0 || math.IsNaN(smoothing) || math.IsInf(smoothing, 0) {
		return nil, ErrInvalidSmoothing
	}
	if smoothing < MinSmoothing {
		smoothing = MinSmoothing
	}
	return &MultinomialNB{
		store:     store,
		smoothing: smoothing,
	}, nil
}

// Smoothing returns the additive smoothing in effect.
func (nb *MultinomialNB) Smoothing() float64 {
	return nb.smoothing
}

// Labels returns the labels seen during Fit in the order they were first seen.
func (nb *MultinomialNB) Labels() []string {
	return append([]string(nil), nb.labels...)
}

// Fit estimates priors and smoothed per-feature likelihoods from vectors and
// their labels. The store is reset first. All vectors must share one dimension,
// which becomes the vocabulary size of the model.
func (nb *MultinomialNB) Fit(vectors []FeatureVector, labels []string) error {
	if len(vectors) == 0 {
		return ErrEmptyTrainingSet
	}
	if len(vectors) != len(labels) {
		return &ShapeMismatchError{What: "label count", Want: len(vectors), Got: len(labels)}
	}
	dim := vectors[0].Dim
	for _, v := range vectors {
		if err := checkVector(v, dim); err != nil {
			return err
		}
	}

	if err := nb.store.Reset(); err != nil {
		return err
	}
	for i, v := range vectors {
		if err := nb.store.AddCategory(labels[i]); err != nil {
			return err
		}
		if err := nb.store.AddDocument(labels[i], v); err != nil {
			return err
		}
	}

	categories, err := nb.store.Categories()
	if err != nil {
		return err
	}
	docCounts, err := nb.store.DocumentCounts()
	if err != nil {
		return err
	}

	total := float64(len(vectors))
	logPrior := make([]float64, len(categories))
	logLikelihood := make([][]float64, len(categories))
	for c, cat := range categories {
		logPrior[c] = math.Log(float64(docCounts[cat])) - math.Log(total)

		fc, err := nb.store.FeatureCounts(cat)
		if err != nil {
			return err
		}
		var n int64
		for _, count := range fc {
			n += count
		}
		// log((smoothing + N_cj) / (smoothing*V + N_c))
		denom := math.Log(nb.smoothing*float64(dim) + float64(n))
		ll := make([]float64, dim)
		for j := range ll {
			ll[j] = math.Log(nb.smoothing+float64(fc[j])) - denom
		}
		logLikelihood[c] = ll
	}

	nb.dim = dim
	nb.labels = append([]string(nil), categories...)
	nb.logPrior = logPrior
	nb.logLikelihood = logLikelihood
	return nil
}

// checkVector reports a vector that doesn't have dimension dim, whose Indices
// and Counts differ in length, or that has an index outside [0, dim).
func checkVector(v FeatureVector, dim int) error {
	if v.Dim != dim {
		return &ShapeMismatchError{What: "vector dimension", Want: dim, Got: v.Dim}
	}
	if len(v.Counts) != len(v.Indices) {
		return &ShapeMismatchError{What: "vector counts", Want: len(v.Indices), Got: len(v.Counts)}
	}
	for _, i := range v.Indices {
		if i < 0 || i >= dim {
			return &ShapeMismatchError{What: "feature index", Want: dim, Got: i}
		}
	}
	return nil
}

// jointLogLikelihood returns log P(label) + sum(count * log P(feature|label))
// for every label, in label order.
func (nb *MultinomialNB) jointLogLikelihood(v FeatureVector) ([]float64, error) {
	if nb.labels == nil {
		return nil, ErrNotFitted
	}
	if err := checkVector(v, nb.dim); err != nil {
		return nil, err
	}
	scores := make([]float64, len(nb.labels))
	for c := range nb.labels {
		s := nb.logPrior[c]
		ll := nb.logLikelihood[c]
		for j, i := range v.Indices {
			s += float64(v.Counts[j]) * ll[i]
		}
		scores[c] = s
	}
	return scores, nil
}

// Predict returns the most probable label for v. When several labels share
// the highest score, the one seen first during Fit wins.
func (nb *MultinomialNB) Predict(v FeatureVector) (string, error) {
	scores, err := nb.jointLogLikelihood(v)
	if err != nil {
		return "", err
	}
	best := 0
	for c := 1; c < len(scores); c++ {
		if scores[c] > scores[best] {
			best = c
		}
	}
	return nb.labels[best], nil
}

// PredictProba returns the posterior probability of every label for v.
func (nb *MultinomialNB) PredictProba(v FeatureVector) (map[string]float64, error) {
	scores, err := nb.jointLogLikelihood(v)
	if err != nil {
		return nil, err
	}
	top := math.Inf(-1)
	for _, s := range scores {
		top = math.Max(top, s)
	}
	sum := 0.0
	for c, s := range scores {
		scores[c] = math.Exp(s - top)
		sum += scores[c]
	}
	probs := make(map[string]float64, len(scores))
	for c, s := range scores {
		probs[nb.labels[c]] = s / sum
	}
	return probs, nil
}

// Score returns the fraction of vectors whose predicted label equals the
// corresponding entry of labels. An empty test set scores 0.
func (nb *MultinomialNB) Score(vectors []FeatureVector, labels []string) (float64, error) {
	if len(vectors) != len(labels) {
		return 0, &ShapeMismatchError{What: "label count", Want: len(vectors), Got: len(labels)}
	}
	if nb.labels == nil {
		return 0, ErrNotFitted
	}
	if len(vectors) == 0 {
		return 0, nil
	}
	correct := 0
	for i, v := range vectors {
		label, err := nb.Predict(v)
		if err != nil {
			return 0, err
		}
		if label == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(vectors)), nil
}
