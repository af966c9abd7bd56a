package app

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"yasl/alg/search"
	"yasl/nlp/format/taggedsentence"
	"yasl/nlp/tagger"
	"yasl/nlp/types"
	"yasl/util"
)

var (
	nBest        int
	metricLinger time.Duration
)

type decoded struct {
	corpus      types.Corpus
	sents       []taggedsentence.Sentence
	predictions []*search.Prediction
	metrics     *metricsServer
}

// Close stops the metrics server, if any, after the -linger delay.
func (d *decoded) Close() error {
	return d.metrics.Close(metricLinger)
}

// metricsServer exposes beam metrics for as long as the command runs.
type metricsServer struct {
	server   *http.Server
	listener net.Listener
}

// serveMetrics attaches beam metrics to the model and exposes them on
// addr under /metrics.
func serveMetrics(m *tagger.Model, addr string) (*tagger.Model, *metricsServer, error) {
	metrics := search.NewMetrics()
	registry := prometheus.NewRegistry()
	if err := registry.Register(metrics); err != nil {
		return nil, nil, err
	}
	beam := m.Beam()
	beam.Metrics = metrics
	withMetrics, err := m.WithBeam(beam)
	if err != nil {
		return nil, nil, err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "listening on %s", addr)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	s := &metricsServer{server: &http.Server{Handler: mux}, listener: listener}
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			util.Logger().Errorw("Metrics server stopped", "addr", s.Addr(), "error", err)
		}
	}()
	util.Logger().Infow("Serving metrics", "addr", s.Addr())
	return withMetrics, s, nil
}

func (s *metricsServer) Addr() string {
	return s.listener.Addr().String()
}

// Close keeps serving for linger so a final scrape can happen, then shuts
// the server down. A nil server does nothing.
func (s *metricsServer) Close(linger time.Duration) error {
	if s == nil {
		return nil
	}
	if linger > 0 {
		util.Logger().Infow("Metrics server lingering", "addr", s.Addr(), "linger", linger)
		time.Sleep(linger)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// decodeCorpus reads the model and the corpus named by the flags and decodes
// every sequence. Failed sequences are logged; their predictions are nil
// and the combined error is returned alongside the decoded corpus.
func decodeCorpus(cmd *commander.Command, tagged bool) (*tagger.Model, *decoded, error) {
	if !VerifyExists(modelFile) {
		return nil, nil, errors.Errorf("model %s not found", modelFile)
	}
	if !VerifyExists(input) {
		return nil, nil, errors.Errorf("input %s not found", input)
	}
	m, _, err := LoadModel(cmd, modelFile)
	if err != nil {
		return nil, nil, err
	}
	sum, err := util.MD5File(modelFile)
	if err != nil {
		return nil, nil, err
	}
	util.Logger().Infow("Loaded model", "file", modelFile, "md5", sum, "labels", len(m.Labels()),
		"order", m.Encoder().WindowSize(), "encoder", encoderName(m.Encoder()),
		"beam", m.Beam().Size, "candidates", m.Beam().MaxCandidates)
	var metrics *metricsServer
	if metricAddr != "" {
		if m, metrics, err = serveMetrics(m, metricAddr); err != nil {
			return nil, nil, err
		}
	}

	corpus, sents, err := ReadCorpus(input, format, tagged)
	if err != nil {
		metrics.Close(0)
		return nil, nil, errors.WithMessagef(err, "reading %s", input)
	}
	util.Logger().Infow("Decoding", "sequences", len(corpus), "workers", Workers)
	start := time.Now()
	predictions, err := m.DecodeAll(corpus, Workers)
	failed := multierr.Errors(err)
	for _, e := range failed {
		util.Logger().Errorw("Decoding failed", "error", e)
	}
	util.Logger().Infow("Decoded", "sequences", len(corpus), "failed", len(failed), "duration", time.Since(start))
	return m, &decoded{corpus: corpus, sents: sents, predictions: predictions, metrics: metrics}, err
}

func Tag(cmd *commander.Command, args []string) error {
	REQUIRED_FLAGS := []string{"model", "in"}
	if err := VerifyFlags(cmd, REQUIRED_FLAGS); err != nil {
		return err
	}
	// output is aligned with the input, so any failed sequence fails the run
	_, d, err := decodeCorpus(cmd, false)
	if d != nil {
		defer d.Close()
	}
	if err != nil {
		return err
	}
	if err := WritePredictions(output, format, d.corpus, d.sents, d.predictions, nBest); err != nil {
		return errors.WithMessage(err, "writing predictions")
	}
	if output != "" {
		util.Logger().Infow("Wrote predictions", "file", output)
	}
	return nil
}

func addDecodeFlags(cmd *commander.Command) {
	addInputFlags(cmd)
	addModelFlags(cmd)
	cmd.Flag.StringVar(&modelFile, "model", "", "Model file")
	cmd.Flag.IntVar(&Workers, "workers", 1, "Sequences decoded in parallel")
	cmd.Flag.BoolVar(&ConcurrentBeam, "concurrent", false, "Expand beam hypotheses concurrently")
	cmd.Flag.StringVar(&metricAddr, "metrics", "", "Serve prometheus metrics on this address while the command runs")
	cmd.Flag.DurationVar(&metricLinger, "linger", 0, "Keep serving metrics this long after decoding finishes")
}

func TagCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       Tag,
		UsageLine: "tag <file options> [arguments]",
		Short:     "label sequences with a trained model",
		Long: `
label sequences with a trained model

	$ ./yasl tag -model <model file> -in <input file> [-out <output file>] [options]

-order and -encoder are stored in the model; when given they are only
checked against it.

`,
		Flag: *flag.NewFlagSet("tag", flag.ExitOnError),
	}
	addDecodeFlags(cmd)
	cmd.Flag.StringVar(&output, "out", "", "Output file (default stdout)")
	cmd.Flag.IntVar(&nBest, "nbest", 1, "Write the n best paths of every sequence")
	return cmd
}
