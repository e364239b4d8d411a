package classifier

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fitDocs(t *testing.T, store Store, docs, labels []string) (*CountVectorizer, *MultinomialNB) {
	t.Helper()
	cv := NewCountVectorizer(DefaultMinDF, WhitespaceTokenizer)
	x, err := cv.FitTransform(NormalizeAll(docs, 0))
	require.NoError(t, err)
	nb, err := NewMultinomialNB(store, DefaultSmoothing)
	require.NoError(t, err)
	require.NoError(t, nb.Fit(x, labels))
	return cv, nb
}

func TestBayesianClassifier(t *testing.T) {
	cv, nb := fitDocs(t, NewLocalStore(),
		[]string{"the cat sat", "the dog ran", "a dog barked"},
		[]string{"cat", "dog", "dog"})
	x, err := cv.Transform([]string{"the dog"})
	if err != nil {
		t.Fatal(err)
	}
	label, err := nb.Predict(x[0])
	if err != nil {
		t.Fatal(err)
	}
	if label != "dog" {
		t.Fatalf("Predict returned %q instead of dog", label)
	}
}

func TestMultinomialNBEstimates(t *testing.T) {
	_, nb := fitDocs(t, NewLocalStore(),
		[]string{"cat the cat sat", "dog the dog ran"},
		[]string{"cat", "dog"})

	// vocabulary: cat dog ran sat the
	assert.Equal(t, []string{"cat", "dog"}, nb.Labels())
	assert.InDelta(t, math.Log(0.5), nb.logPrior[0], 1e-12)
	assert.InDelta(t, math.Log(0.5), nb.logPrior[1], 1e-12)

	// cat class: 4 tokens, V=5, smoothing 1
	assert.InDelta(t, math.Log(3.0/9.0), nb.logLikelihood[0][0], 1e-12) // cat
	assert.InDelta(t, math.Log(1.0/9.0), nb.logLikelihood[0][1], 1e-12) // dog
	assert.InDelta(t, math.Log(2.0/9.0), nb.logLikelihood[0][3], 1e-12) // sat
	assert.InDelta(t, math.Log(2.0/9.0), nb.logLikelihood[0][4], 1e-12) // the
	assert.InDelta(t, math.Log(1.0/9.0), nb.logLikelihood[1][3], 1e-12) // sat in dog
}

func TestMultinomialNBEndToEnd(t *testing.T) {
	train, err := ReadCorpus(strings.NewReader("cat the cat sat\ndog the dog ran\n"))
	require.NoError(t, err)
	test, err := ReadCorpus(strings.NewReader("cat the cat meowed\n"))
	require.NoError(t, err)

	cv := NewCountVectorizer(DefaultMinDF, WhitespaceTokenizer)
	xTrain, err := cv.FitTransform(NormalizeAll(train.Documents, 0))
	require.NoError(t, err)
	nb, err := NewMultinomialNB(NewLocalStore(), DefaultSmoothing)
	require.NoError(t, err)
	require.NoError(t, nb.Fit(xTrain, train.Labels))
	xTest, err := cv.Transform(NormalizeAll(test.Documents, 0))
	require.NoError(t, err)

	label, err := nb.Predict(xTest[0])
	require.NoError(t, err)
	assert.Equal(t, "cat", label)

	score, err := nb.Score(xTest, test.Labels)
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
}

func TestMultinomialNBTieBreak(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		want   string
	}{
		{"b first", []string{"b", "a"}, "b"},
		{"a first", []string{"a", "b"}, "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cv, nb := fitDocs(t, NewLocalStore(), []string{"x", "x"}, tt.labels)
			x, err := cv.Transform([]string{"x", "", "unseen"})
			require.NoError(t, err)
			for _, v := range x {
				label, err := nb.Predict(v)
				require.NoError(t, err)
				assert.Equal(t, tt.want, label)
			}
			p, err := nb.PredictProba(x[0])
			require.NoError(t, err)
			assert.InDelta(t, 0.5, p["a"], 1e-12)
			assert.InDelta(t, 0.5, p["b"], 1e-12)
		})
	}
}

func TestMultinomialNBPredictProba(t *testing.T) {
	cv, nb := fitDocs(t, NewLocalStore(),
		[]string{"apple banana", "car truck", "car bus", "banana cherry"},
		[]string{"fruit", "vehicle", "vehicle", "fruit"})
	x, err := cv.Transform([]string{"banana banana truck"})
	require.NoError(t, err)
	p, err := nb.PredictProba(x[0])
	require.NoError(t, err)
	require.Len(t, p, 2)
	assert.InDelta(t, 1.0, p["fruit"]+p["vehicle"], 1e-12)
	assert.Greater(t, p["fruit"], p["vehicle"])
}

func TestMultinomialNBMemorizes(t *testing.T) {
	docs := []string{"alpha", "beta", "gamma", "alpha alpha"}
	labels := []string{"a", "b", "c", "a"}
	cv, nb := fitDocs(t, NewLocalStore(), docs, labels)
	x, err := cv.Transform(docs)
	require.NoError(t, err)
	score, err := nb.Score(x, labels)
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
}

func TestMultinomialNBDeterministic(t *testing.T) {
	docs := []string{"red green", "green blue", "blue red", "red red", "yellow"}
	labels := []string{"x", "y", "y", "x", "z"}
	test := []string{"red", "green", "blue", "yellow green", "purple", ""}
	truth := []string{"x", "y", "y", "z", "x", "x"}

	var preds [2][]string
	var scores [2]float64
	for run := range preds {
		cv, nb := fitDocs(t, NewLocalStore(), docs, labels)
		x, err := cv.Transform(test)
		require.NoError(t, err)
		for _, v := range x {
			label, err := nb.Predict(v)
			require.NoError(t, err)
			preds[run] = append(preds[run], label)
		}
		scores[run], err = nb.Score(x, truth)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, scores[run], 0.0)
		assert.LessOrEqual(t, scores[run], 1.0)
	}
	assert.Equal(t, preds[0], preds[1])
	assert.Equal(t, scores[0], scores[1])
}

func TestMultinomialNBEmptyVocabulary(t *testing.T) {
	cv, nb := fitDocs(t, NewLocalStore(), []string{"", "123", "!!"}, []string{"b", "a", "a"})
	assert.Empty(t, cv.Vocabulary())
	x, err := cv.Transform([]string{"anything at all"})
	require.NoError(t, err)
	assert.Equal(t, 0, x[0].Dim)
	label, err := nb.Predict(x[0])
	require.NoError(t, err)
	assert.Equal(t, "a", label)
}

func TestMultinomialNBErrors(t *testing.T) {
	for _, smoothing := range []float64{-1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := NewMultinomialNB(NewLocalStore(), smoothing)
		assert.ErrorIs(t, err, ErrInvalidSmoothing, "smoothing %v", smoothing)
	}

	nb, err := NewMultinomialNB(NewLocalStore(), 0)
	require.NoError(t, err)
	assert.Equal(t, MinSmoothing, nb.Smoothing())

	_, err = nb.Predict(FeatureVector{})
	assert.ErrorIs(t, err, ErrNotFitted)
	_, err = nb.Score(nil, nil)
	assert.ErrorIs(t, err, ErrNotFitted)

	assert.ErrorIs(t, nb.Fit(nil, nil), ErrEmptyTrainingSet)

	var shape *ShapeMismatchError
	err = nb.Fit([]FeatureVector{{Dim: 2}}, []string{"a", "b"})
	require.True(t, errors.As(err, &shape))
	assert.Equal(t, "label count", shape.What)

	err = nb.Fit([]FeatureVector{{Dim: 2}, {Dim: 3}}, []string{"a", "b"})
	require.True(t, errors.As(err, &shape))
	assert.Equal(t, 2, shape.Want)
	assert.Equal(t, 3, shape.Got)

	require.NoError(t, nb.Fit([]FeatureVector{{Dim: 2}, {Dim: 2, Indices: []int{1}, Counts: []int{4}}}, []string{"a", "b"}))

	_, err = nb.Score([]FeatureVector{{Dim: 2}}, []string{"a", "b"})
	assert.True(t, errors.As(err, &shape))

	_, err = nb.Score([]FeatureVector{{Dim: 5}}, []string{"a"})
	require.True(t, errors.As(err, &shape))
	assert.Equal(t, "vector dimension", shape.What)

	_, err = nb.PredictProba(FeatureVector{Dim: 1})
	assert.True(t, errors.As(err, &shape))
}

func TestMultinomialNBEmptyTestSet(t *testing.T) {
	_, nb := fitDocs(t, NewLocalStore(), []string{"one", "two"}, []string{"a", "b"})
	score, err := nb.Score(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestMultinomialNBRefit(t *testing.T) {
	store := NewLocalStore()
	_, nb := fitDocs(t, store, []string{"one", "two"}, []string{"a", "b"})
	require.NoError(t, nb.Fit([]FeatureVector{{Dim: 1, Indices: []int{0}, Counts: []int{1}}}, []string{"c"}))
	assert.Equal(t, []string{"c"}, nb.Labels())
	counts, err := store.DocumentCounts()
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"c": 1}, counts)
}

func TestMultinomialNBMalformedVectors(t *testing.T) {
	malformed := []struct {
		name string
		v    FeatureVector
		what string
	}{
		{"index past dim", FeatureVector{Dim: 2, Indices: []int{5}, Counts: []int{1}}, "feature index"},
		{"index at dim", FeatureVector{Dim: 2, Indices: []int{2}, Counts: []int{1}}, "feature index"},
		{"negative index", FeatureVector{Dim: 2, Indices: []int{-1}, Counts: []int{1}}, "feature index"},
		{"missing counts", FeatureVector{Dim: 2, Indices: []int{0, 1}, Counts: []int{1}}, "vector counts"},
	}

	_, nb := fitDocs(t, NewLocalStore(), []string{"one", "two"}, []string{"a", "b"})
	for _, tt := range malformed {
		t.Run(tt.name, func(t *testing.T) {
			var shape *ShapeMismatchError

			_, err := nb.Predict(tt.v)
			require.True(t, errors.As(err, &shape), "Predict: %v", err)
			assert.Equal(t, tt.what, shape.What)

			_, err = nb.PredictProba(tt.v)
			require.True(t, errors.As(err, &shape), "PredictProba: %v", err)

			_, err = nb.Score([]FeatureVector{tt.v}, []string{"a"})
			require.True(t, errors.As(err, &shape), "Score: %v", err)

			fresh, err := NewMultinomialNB(NewLocalStore(), DefaultSmoothing)
			require.NoError(t, err)
			err = fresh.Fit([]FeatureVector{{Dim: 2}, tt.v}, []string{"a", "b"})
			require.True(t, errors.As(err, &shape), "Fit: %v", err)
			assert.Equal(t, tt.what, shape.What)
		})
	}
}
