package app

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gonuts/commander"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"yasl/alg/featurevector"
	"yasl/alg/kernel"
	"yasl/alg/perceptron"
	"yasl/alg/search"
	"yasl/nlp/format/seqcorpus"
	"yasl/nlp/tagger"
	"yasl/nlp/types"
	"yasl/util"
	"yasl/util/conf"
)

func word(w string, labels ...types.Label) *types.Example {
	ex := types.NewExample(labels...)
	ex.AddRepresentation("rep", featurevector.Sparse{"w=" + w: 1})
	return ex
}

func trainCorpus() types.Corpus {
	return types.Corpus{
		types.NewSequence(word("the", "A"), word("old", "A"), word("man", "B")),
		types.NewSequence(word("man", "B"), word("the", "A"), word("old", "A")),
	}
}

func writeCorpus(t *testing.T, name string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), name)
	require.NoError(t, seqcorpus.WriteFile(filename, trainCorpus()))
	return filename
}

func run(t *testing.T, cmd *commander.Command, args ...string) error {
	t.Helper()
	require.NoError(t, cmd.Flag.Parse(args))
	return cmd.Run(cmd, cmd.Flag.Args())
}

func TestNewLearner(t *testing.T) {
	cases := []struct {
		algorithm, encoder string
		cache              bool
	}{
		{conf.AlgPerceptron, conf.EncoderExplicit, false},
		{conf.AlgPassiveAggressive, conf.EncoderExplicit, false},
		{conf.AlgKernelPerceptron, conf.EncoderKernel, false},
		{conf.AlgKernelPerceptron, conf.EncoderKernel, true},
	}
	for _, tc := range cases {
		t.Run(tc.algorithm, func(t *testing.T) {
			c := conf.Defaults()
			c.Learner.Algorithm = tc.algorithm
			c.Learner.Cache = tc.cache
			c.Encoder = tc.encoder
			c.BeamSize = 7
			require.NoError(t, c.Validate())

			learner, err := NewLearner(c)
			require.NoError(t, err)
			assert.Equal(t, 7, learner.BeamSize)
			assert.Equal(t, c.Order, learner.Encoder().WindowSize())
			assert.Equal(t, tc.encoder, encoderName(learner.Encoder()))

			model, err := learner.Train(trainCorpus())
			require.NoError(t, err)
			if tc.algorithm == conf.AlgKernelPerceptron {
				kernelMethod, ok := model.Classifier().(*perceptron.KernelOneVsAll)
				require.True(t, ok)
				_, cached := kernelMethod.Kernel().(*kernel.Cached)
				assert.Equal(t, tc.cache, cached)
			}
		})
	}

	c := conf.Defaults()
	c.Learner.Algorithm = "svm"
	_, err := NewLearner(c)
	assert.Equal(t, conf.ErrInvalid, errors.Cause(err))
}

func TestModelRoundTrip(t *testing.T) {
	learner, err := NewLearner(conf.Defaults())
	require.NoError(t, err)
	model, err := learner.Train(trainCorpus())
	require.NoError(t, err)

	filename := filepath.Join(t.TempDir(), "model.gob")
	c := conf.Defaults()
	require.NoError(t, WriteModel(filename, &Serialization{Model: tagger.Serialize(model), Conf: c}))
	data, err := ReadModel(filename)
	require.NoError(t, err)
	assert.Equal(t, c, data.Conf)

	back, err := tagger.Deserialize(data.Model)
	require.NoError(t, err)
	assert.Equal(t, model.Labels(), back.Labels())

	seq := types.NewSequence(word("the"), word("old"), word("man"))
	want, err := model.Decode(seq)
	require.NoError(t, err)
	got, err := back.Decode(seq)
	require.NoError(t, err)
	assert.Equal(t, want.BestPath().Labels(), got.BestPath().Labels())
	assert.Equal(t, want.BestPath().Score(), got.BestPath().Score())

	_, err = ReadModel(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestWriteNBest(t *testing.T) {
	root := search.NewPath()
	predictions := []*search.Prediction{
		{Paths: []*search.Path{
			root.Append("A", 0.5).Append("B", 1),
			root.Append("B", 0.25).Append("B", 1),
			root.Append("B", 0.25).Append("A", 1),
		}},
		{Paths: []*search.Path{root.Append("A", 1)}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteNBest(&buf, predictions, 2))
	assert.Equal(t, "# sequence 0\n"+
		"0\t-0.693147\tA B\n"+
		"1\t-1.386294\tB B\n"+
		"\n# sequence 1\n"+
		"0\t0.000000\tA\n", buf.String())
}

func TestRelabel(t *testing.T) {
	corpus := trainCorpus()
	root := search.NewPath()
	predictions := []*search.Prediction{
		{Paths: []*search.Path{root.Append("B", 1).Append("B", 1).Append("A", 1)}},
		{Paths: []*search.Path{root.Append("A", 1).Append("A", 1).Append("B", 1)}},
	}
	require.NoError(t, Relabel(corpus, predictions))
	assert.Equal(t, []types.Label{"B", "B", "A"}, corpus[0].GoldLabels())
	assert.Equal(t, []types.Label{"A", "A", "B"}, corpus[1].GoldLabels())

	predictions[1] = &search.Prediction{}
	assert.Error(t, Relabel(corpus, predictions))
}

func TestEvalLabels(t *testing.T) {
	assert.Equal(t, []types.Label{"A", "B", "C"},
		evalLabels([]types.Label{"B", "A"}, []types.Label{"A", "C"}))
}

func TestTrainTagEval(t *testing.T) {
	in := writeCorpus(t, "train.txt.gz")
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.gob")
	confPath := filepath.Join(dir, "effective.yaml")

	require.NoError(t, run(t, TrainCmd(), "-in", in, "-model", modelPath, "-beam", "4", "-writeconf", confPath))
	written, err := conf.ReadFile(confPath)
	require.NoError(t, err)
	assert.Equal(t, 4, written.BeamSize)

	data, err := ReadModel(modelPath)
	require.NoError(t, err)
	assert.Equal(t, 4, data.Model.BeamSize)

	out := filepath.Join(dir, "tagged.txt")
	require.NoError(t, run(t, TagCmd(), "-model", modelPath, "-in", in, "-out", out, "-workers", "2"))
	tagged, err := seqcorpus.ReadFile(out)
	require.NoError(t, err)
	require.Len(t, tagged, 2)
	assert.Equal(t, []types.Label{"A", "A", "B"}, tagged[0].GoldLabels())
	assert.Equal(t, []types.Label{"B", "A", "A"}, tagged[1].GoldLabels())

	report := filepath.Join(dir, "report.txt")
	require.NoError(t, run(t, EvalCmd(), "-model", modelPath, "-in", in, "-out", report))
	text, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(text), "accuracy")
	assert.Contains(t, string(text), "(6/6)")
}

func TestEvalReportsPartialResults(t *testing.T) {
	in := writeCorpus(t, "train.txt")
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.gob")
	require.NoError(t, run(t, TrainCmd(), "-in", in, "-model", modelPath))

	broken := types.NewExample("A")
	broken.AddRepresentation("other", featurevector.Sparse{"x": 1})
	gold := filepath.Join(dir, "gold.txt")
	require.NoError(t, seqcorpus.WriteFile(gold, append(trainCorpus(), types.NewSequence(broken))))

	report := filepath.Join(dir, "report.txt")
	err := run(t, EvalCmd(), "-model", modelPath, "-in", gold, "-out", report)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sequence 2")
	assert.Equal(t, tagger.ErrMissingRepresentation, errors.Cause(multierr.Errors(err)[0]))

	text, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(text), "(6/6)")

	tagged := filepath.Join(dir, "tagged.txt")
	require.Error(t, run(t, TagCmd(), "-model", modelPath, "-in", gold, "-out", tagged))
	assert.False(t, util.Exists(tagged))
}

func TestServeMetrics(t *testing.T) {
	learner, err := NewLearner(conf.Defaults())
	require.NoError(t, err)
	model, err := learner.Train(trainCorpus())
	require.NoError(t, err)

	withMetrics, server, err := serveMetrics(model, "127.0.0.1:0")
	require.NoError(t, err)
	_, err = withMetrics.Decode(trainCorpus()[0])
	require.NoError(t, err)

	url := "http://" + server.Addr() + "/metrics"
	resp, err := http.Get(url)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "beam_sequences_total 1")

	start := time.Now()
	require.NoError(t, server.Close(50*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	_, err = http.Get(url)
	assert.Error(t, err)

	var none *metricsServer
	assert.NoError(t, none.Close(time.Hour))
}

func TestTrainRequiredFlags(t *testing.T) {
	err := run(t, TrainCmd(), "-in", "corpus.txt")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "model"))
}

func TestEncoderMismatchWarning(t *testing.T) {
	in := writeCorpus(t, "train.txt")
	modelPath := filepath.Join(t.TempDir(), "model.gob")
	require.NoError(t, run(t, TrainCmd(), "-in", in, "-model", modelPath))

	core, logs := observer.New(zapcore.WarnLevel)
	util.SetLogger(zap.New(core))
	defer util.SetLogger(nil)

	cmd := TagCmd()
	require.NoError(t, cmd.Flag.Parse([]string{"-order", "3", "-encoder", "kernel", "-beam", "2"}))
	m, _, err := LoadModel(cmd, modelPath)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Encoder().WindowSize())
	assert.Equal(t, 2, m.Beam().Size)

	warnings := logs.All()
	require.Len(t, warnings, 1)
	fields := warnings[0].ContextMap()
	assert.EqualValues(t, 3, fields["order"])
	assert.EqualValues(t, 1, fields["stored order"])
	assert.Equal(t, conf.EncoderExplicit, fields["stored encoder"])
}
