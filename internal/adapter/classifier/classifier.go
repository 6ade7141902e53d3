// internal/adapter/classifier/classifier.go

package classifier

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"playerpulse/internal/domain/sentiment"
)

// DefaultModel is the sentiment model used when none is configured
const DefaultModel = "cardiffnlp/twitter-roberta-base-sentiment-latest"

// Config contains configuration for the classifier
type Config struct {
	Model    string
	ModelDir string
	OnnxFile string
}

// HugotClassifier implements sentiment.Classifier with a hugot text
// classification pipeline running on the pure Go backend
type HugotClassifier struct {
	mu       sync.Mutex
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
}

// PrepareModel downloads the model into dir unless it is already there and
// returns the local model path
func PrepareModel(modelName, dir, onnxFile string) (string, error) {
	modelPath := filepath.Join(dir, strings.ReplaceAll(modelName, "/", "_"))

	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create model directory: %w", err)
		}
		downloadOptions := hugot.NewDownloadOptions()
		if onnxFile != "" {
			downloadOptions.OnnxFilePath = onnxFile
		}
		downloadedPath, err := hugot.DownloadModel(modelName, dir, downloadOptions)
		if err != nil {
			return "", fmt.Errorf("failed to download model: %w", err)
		}
		modelPath = downloadedPath
	}

	return modelPath, nil
}

// New prepares the model and builds the classification pipeline
func New(cfg Config) (*HugotClassifier, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.ModelDir == "" {
		cfg.ModelDir = "./models"
	}

	modelPath, err := PrepareModel(cfg.Model, cfg.ModelDir, cfg.OnnxFile)
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "sentiment-pipeline",
		Options: []hugot.TextClassificationOption{
			pipelines.WithSoftmax(),
		},
	}
	if cfg.OnnxFile != "" {
		config.OnnxFilename = filepath.Base(cfg.OnnxFile)
	}

	classificationPipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create classification pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create classification pipeline: %w", err)
	}

	return &HugotClassifier{
		session:  session,
		pipeline: classificationPipeline,
	}, nil
}

// Classify returns the most likely sentiment label for text
func (c *HugotClassifier) Classify(ctx context.Context, text string) (sentiment.Label, error) {
	if err := ctx.Err(); err != nil {
		return sentiment.Label{}, err
	}

	c.mu.Lock()
	result, err := c.pipeline.RunPipeline([]string{text})
	c.mu.Unlock()
	if err != nil {
		return sentiment.Label{}, fmt.Errorf("failed to run classification: %w", err)
	}

	if len(result.ClassificationOutputs) == 0 {
		return sentiment.Label{}, fmt.Errorf("classification returned no output")
	}

	label, ok := topLabel(result.ClassificationOutputs[0])
	if !ok {
		return sentiment.Label{}, fmt.Errorf("classification returned no labels")
	}
	return label, nil
}

// Close releases the hugot session
func (c *HugotClassifier) Close() error {
	return c.session.Destroy()
}

func topLabel(outputs []pipelines.ClassificationOutput) (sentiment.Label, bool) {
	if len(outputs) == 0 {
		return sentiment.Label{}, false
	}

	best := outputs[0]
	for _, o := range outputs[1:] {
		if o.Score > best.Score {
			best = o
		}
	}

	return sentiment.Label{
		Name:       strings.ToLower(best.Label),
		Confidence: float64(best.Score),
	}, true
}
