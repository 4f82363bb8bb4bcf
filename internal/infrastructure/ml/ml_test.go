package ml

import (
	"bytes"
	"context"
	"io"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/oralrisk/internal/domain/models"
	"github.com/turtacn/oralrisk/pkg/errors"
	"github.com/turtacn/oralrisk/pkg/logger"
)

var (
	trainOnce     sync.Once
	trainedModel  *Pipeline
	trainedReport *Evaluation
	trainErr      error
)

func trained(t *testing.T) (*Pipeline, *Evaluation) {
	t.Helper()
	trainOnce.Do(func() {
		trainedModel, trainedReport, trainErr = Fit(context.Background(), GenerateDataset(1000, 42), DefaultTrainOptions())
	})
	require.NoError(t, trainErr)
	return trainedModel, trainedReport
}

func highRiskRow() models.FeatureRow {
	return models.FeatureRow{
		models.FieldAge: "62", models.FieldGender: "Male", models.FieldSmoker: "yes",
		models.FieldAlcohol: "heavy", models.FieldBetelQuidUse: "yes", models.FieldWhitePatches: "yes",
		models.FieldHPV: "yes", models.FieldGenetics: "yes", models.FieldImmuneCompromised: "no",
		models.FieldChronicIrritation: "yes", models.FieldPoorOralHygiene: "yes", models.FieldDiet: "low",
		models.FieldOralLesions: "yes", models.FieldDifficultySwallowing: "yes",
		models.FieldOralCondition: "poor", models.FieldSymptomsText: "white patch on inner cheek",
	}
}

func lowRiskRow() models.FeatureRow {
	row := highRiskRow()
	for _, f := range []string{models.FieldSmoker, models.FieldWhitePatches, models.FieldHPV,
		models.FieldGenetics, models.FieldChronicIrritation} {
		row[f] = "no"
	}
	row[models.FieldAlcohol] = "none"
	row[models.FieldOralCondition] = "good"
	row[models.FieldAge] = "25"
	return row
}

func TestGenerateDatasetIsSeeded(t *testing.T) {
	a := GenerateDataset(50, 7)
	b := GenerateDataset(50, 7)
	c := GenerateDataset(50, 8)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	namePattern := regexp.MustCompile(`^user_[a-z0-9]{6}$`)
	for _, s := range GenerateDataset(500, 42) {
		assert.Regexp(t, namePattern, s.Name)
		age, err := strconv.Atoi(s.Features[models.FieldAge])
		require.NoError(t, err)
		assert.GreaterOrEqual(t, age, 18)
		assert.LessOrEqual(t, age, 80)
		assert.Contains(t, symptomPhrases, s.Features[models.FieldSymptomsText])
		assert.Equal(t, HeuristicLabel(s.Features), s.Label)
		assert.Len(t, s.Features, len(models.FeatureColumns))
	}
}

func TestHeuristicLabel(t *testing.T) {
	tests := []struct {
		name string
		row  models.FeatureRow
		want string
	}{
		{"nothing present", models.FeatureRow{models.FieldWhitePatches: "no", models.FieldAlcohol: "light"}, "low"},
		{"one factor", models.FeatureRow{models.FieldHPV: "yes"}, "low"},
		{"two factors", models.FeatureRow{models.FieldHPV: "yes", models.FieldAlcohol: "heavy"}, "medium"},
		{"three factors", models.FeatureRow{models.FieldHPV: "yes", models.FieldSmoker: "yes", models.FieldOralCondition: "poor"}, "medium"},
		{"four factors", models.FeatureRow{
			models.FieldHPV: "yes", models.FieldSmoker: "yes", models.FieldGenetics: "yes", models.FieldChronicIrritation: "yes",
		}, "high"},
		{"factors outside the score are ignored", models.FeatureRow{
			models.FieldBetelQuidUse: "yes", models.FieldOralLesions: "yes", models.FieldPoorOralHygiene: "yes",
		}, "low"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HeuristicLabel(tt.row))
		})
	}
	assert.Equal(t, "high", HeuristicLabel(highRiskRow()))
}

func TestDatasetCSV(t *testing.T) {
	samples := GenerateDataset(20, 1)
	var buf bytes.Buffer
	require.NoError(t, WriteDatasetCSV(&buf, samples))

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.True(t, strings.HasPrefix(header, "name,age,gender,smoker,alcohol,"))
	assert.True(t, strings.HasSuffix(header, "symptoms_text,label"))

	back, err := ReadDatasetCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, samples, back)

	_, err = ReadDatasetCSV(strings.NewReader("name,age\nx,1\n"))
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestStandardScaler(t *testing.T) {
	s := FitStandardScaler([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5, s.Mean, 1e-9)
	assert.InDelta(t, 2, s.Scale, 1e-9)
	assert.InDelta(t, 1, s.Transform(7), 1e-9)

	constant := FitStandardScaler([]float64{3, 3})
	assert.Equal(t, 1.0, constant.Scale)
}

func TestOneHotEncoderIgnoresUnknown(t *testing.T) {
	enc := FitOneHotEncoder([]string{"a", "b"}, []map[string]string{
		{"a": "x", "b": "p"}, {"a": "y", "b": "q"}, {"a": "x", "b": "r"},
	})
	require.Equal(t, 5, enc.Width())

	dst := make([]float64, enc.Width())
	enc.Transform(map[string]string{"a": "y", "b": "r"}, dst)
	assert.Equal(t, []float64{0, 1, 0, 0, 1}, dst)

	dst = make([]float64, enc.Width())
	enc.Transform(map[string]string{"a": "zzz"}, dst)
	assert.Equal(t, []float64{0, 0, 0, 0, 0}, dst)
}

func TestTfidfVectorizer(t *testing.T) {
	v := NewTfidfVectorizer(1, 2, 1000)
	v.Fit([]string{"Lump in mouth", "red patch in mouth", "a lump"})

	assert.Contains(t, v.Vocabulary, "lump")
	assert.Contains(t, v.Vocabulary, "in mouth")
	assert.NotContains(t, v.Vocabulary, "a", "single-character tokens are dropped")

	dst := make([]float64, v.Width())
	v.Transform("LUMP in mouth", dst)
	var norm float64
	for _, x := range dst {
		norm += x * x
	}
	assert.InDelta(t, 1, math.Sqrt(norm), 1e-9)

	// "mouth" appears in two of three documents: ln(4/3)+1
	assert.InDelta(t, math.Log(4.0/3.0)+1, v.IDF[v.Vocabulary["mouth"]], 1e-9)

	empty := make([]float64, v.Width())
	v.Transform("nothing known", empty)
	for _, x := range empty {
		assert.Zero(t, x)
	}

	limited := NewTfidfVectorizer(1, 1, 2)
	limited.Fit([]string{"mouth mouth lump", "mouth pain", "lump"})
	assert.Len(t, limited.Vocabulary, 2)
	assert.Contains(t, limited.Vocabulary, "mouth")
	assert.Contains(t, limited.Vocabulary, "lump")
}

func TestTfidfVectorizerTokenizesNonASCII(t *testing.T) {
	v := NewTfidfVectorizer(1, 1, 1000)
	v.Fit([]string{"Douleur à la mâchoire", "naïve_case 42"})

	assert.Contains(t, v.Vocabulary, "mâchoire")
	assert.Contains(t, v.Vocabulary, "douleur")
	assert.NotContains(t, v.Vocabulary, "m", "accented words are not split at the accent")
	assert.NotContains(t, v.Vocabulary, "à", "single-character tokens are dropped")
	assert.Contains(t, v.Vocabulary, "naïve_case")
	assert.Contains(t, v.Vocabulary, "42")

	dst := make([]float64, v.Width())
	v.Transform("MÂCHOIRE", dst)
	assert.NotZero(t, dst[v.Vocabulary["mâchoire"]])
}

func TestStratifiedSplit(t *testing.T) {
	samples := GenerateDataset(1000, 42)
	train, test := StratifiedSplit(samples, 0.2, 42)
	assert.Len(t, samples, len(train)+len(test))
	assert.InDelta(t, 200, len(test), 2)

	count := func(ss []Sample) map[string]int {
		m := map[string]int{}
		for _, s := range ss {
			m[s.Label]++
		}
		return m
	}
	all, held := count(samples), count(test)
	for label, n := range all {
		assert.InDelta(t, float64(n)*0.2, float64(held[label]), 1, label)
	}

	again, _ := StratifiedSplit(samples, 0.2, 42)
	assert.Equal(t, train, again)
}

func TestFitProducesUsefulClassifier(t *testing.T) {
	p, ev := trained(t)

	assert.Equal(t, []string{"high", "low", "medium"}, p.Classes())
	assert.Equal(t, 1000, p.TrainingRows+p.EvaluationRows)
	assert.Greater(t, ev.Accuracy, 0.7)
	assert.Contains(t, ev.Report(), "Confusion matrix")

	probs, err := p.PredictProba(context.Background(), highRiskRow())
	require.NoError(t, err)
	var sum float64
	for _, v := range probs {
		sum += v
	}
	assert.InDelta(t, 1, sum, 1e-9)

	label, err := p.Predict(highRiskRow())
	require.NoError(t, err)
	assert.Equal(t, "high", label)

	label, err = p.Predict(lowRiskRow())
	require.NoError(t, err)
	assert.Equal(t, "low", label)

	row := highRiskRow()
	row[models.FieldAge] = "old"
	_, err = p.PredictProba(context.Background(), row)
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestPipelineSaveLoad(t *testing.T) {
	p, _ := trained(t)

	var buf bytes.Buffer
	require.NoError(t, p.Save(&buf))
	loaded, err := LoadPipeline(&buf)
	require.NoError(t, err)

	want, err := p.PredictProba(context.Background(), highRiskRow())
	require.NoError(t, err)
	got, err := loaded.PredictProba(context.Background(), highRiskRow())
	require.NoError(t, err)
	assert.InDeltaSlice(t, want, got, 1e-12)

	_, err = LoadPipeline(strings.NewReader(`{"version": 99}`))
	assert.True(t, errors.Is(err, errors.ErrModel))
	_, err = LoadPipeline(strings.NewReader(`not json`))
	assert.True(t, errors.Is(err, errors.ErrModel))
}

func TestEvaluate(t *testing.T) {
	ev := Evaluate([]string{"a", "b"}, []string{"a", "a", "b", "b"}, []string{"a", "b", "b", "b"})
	assert.InDelta(t, 0.75, ev.Accuracy, 1e-9)
	assert.Equal(t, [][]int{{1, 1}, {0, 2}}, ev.Confusion)
	assert.InDelta(t, 1.0, ev.PerClass[0].Precision, 1e-9)
	assert.InDelta(t, 0.5, ev.PerClass[0].Recall, 1e-9)
	assert.Equal(t, 2, ev.PerClass[1].Support)
}

type fakeObjects struct {
	objects map[string][]byte
}

func (f *fakeObjects) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeObjects) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func TestParseS3URI(t *testing.T) {
	bucket, key, ok := ParseS3URI("s3://models/oralrisk/v1.json")
	assert.True(t, ok)
	assert.Equal(t, "models", bucket)
	assert.Equal(t, "oralrisk/v1.json", key)

	for _, bad := range []string{"models/v1.json", "s3://", "s3://bucket", "s3:///key"} {
		_, _, ok := ParseS3URI(bad)
		assert.False(t, ok, bad)
	}
}

func TestArtifactStore(t *testing.T) {
	ctx := context.Background()
	p, _ := trained(t)

	t.Run("local", func(t *testing.T) {
		store := NewArtifactStore(nil, logger.NewNoopLogger())
		path := filepath.Join(t.TempDir(), "models", "pipeline.json")
		require.NoError(t, store.SaveArtifact(ctx, path, p))
		loaded, err := store.LoadArtifact(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, p.Classes(), loaded.Classes())

		_, err = store.LoadArtifact(ctx, filepath.Join(t.TempDir(), "missing.json"))
		assert.True(t, errors.Is(err, errors.ErrModel))
	})

	t.Run("s3", func(t *testing.T) {
		fake := &fakeObjects{objects: map[string][]byte{}}
		store := NewArtifactStore(nil, logger.NewNoopLogger())
		store.client = fake

		require.NoError(t, store.SaveArtifact(ctx, "s3://models/oralrisk.json", p))
		assert.Contains(t, fake.objects, "models/oralrisk.json")

		loaded, err := store.LoadArtifact(ctx, "s3://models/oralrisk.json")
		require.NoError(t, err)
		assert.Equal(t, p.Width(), loaded.Width())

		_, err = store.LoadArtifact(ctx, "s3://models/missing.json")
		assert.True(t, errors.Is(err, errors.ErrStorage))
	})
}
