package analysis

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/yildizm/mediscan/internal/common"
	"github.com/yildizm/mediscan/internal/logger"
)

// ONNXName is the registry name of the ONNX executor
const ONNXName = "onnx"

// ONNXOptions configures the ONNX executor
type ONNXOptions struct {
	ModelDir    string
	ModelFile   string
	InputName   string
	OutputName  string
	InputSize   int
	LibraryPath string
}

// ONNX runs a two-class image classifier. Class 1 is the positive
// finding; its probability becomes the risk score.
type ONNX struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	size    int
	log     *logger.Logger

	mu sync.Mutex
}

// NewONNX loads the model and allocates its tensors
func NewONNX(opts ONNXOptions, log *logger.Logger) (*ONNX, error) {
	if log == nil {
		log = logger.Nop()
	}
	if opts.ModelDir == "" {
		return nil, errors.New("model_dir is empty")
	}
	if opts.InputSize <= 0 {
		opts.InputSize = 224
	}
	if opts.ModelFile == "" {
		opts.ModelFile = "model.onnx"
	}

	libPath := opts.LibraryPath
	if libPath == "" {
		libPath = resolveSharedLibraryPath(opts.ModelDir)
	}
	if libPath == "" {
		return nil, fmt.Errorf("onnxruntime shared library not found; set library_path or ONNXRUNTIME_SHARED_LIBRARY_PATH")
	}
	ort.SetSharedLibraryPath(libPath)
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	modelPath := filepath.Join(opts.ModelDir, opts.ModelFile)
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file missing at %s: %w", modelPath, err)
	}

	size := int64(opts.InputSize)
	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, size, size))
	if err != nil {
		return nil, fmt.Errorf("allocate input tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 2))
	if err != nil {
		_ = input.Destroy()
		return nil, fmt.Errorf("allocate output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{opts.InputName},
		[]string{opts.OutputName},
		[]ort.Value{input},
		[]ort.Value{output},
		nil,
	)
	if err != nil {
		_ = input.Destroy()
		_ = output.Destroy()
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	log.Debug("onnx model loaded from %s", modelPath)

	return &ONNX{
		session: session,
		input:   input,
		output:  output,
		size:    opts.InputSize,
		log:     log.WithComponent("onnx"),
	}, nil
}

// Name returns the executor name
func (o *ONNX) Name() string {
	return ONNXName
}

// Analyze decodes f, runs the classifier and converts its logits into scores
func (o *ONNX) Analyze(ctx context.Context, f common.File) (*common.Result, error) {
	start := time.Now()

	img, err := decodeImage(f.Path)
	if err != nil {
		return nil, common.NewAnalysisError(common.ErrTypeValidation, "file is not a decodable image", ONNXName, err)
	}
	pixels := Preprocess(img, o.size)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o.mu.Lock()
	copy(o.input.GetData(), pixels)
	runErr := o.session.Run()
	var logits []float32
	if runErr == nil {
		logits = append(logits, o.output.GetData()...)
	}
	o.mu.Unlock()

	if runErr != nil {
		return nil, common.NewAnalysisError(common.ErrTypeBackend, "onnx run failed", ONNXName, runErr)
	}

	// Inference is not interruptible; a cancelled caller still gets ctx.Err
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	risk, confidence := Scores(Softmax(logits))
	o.log.Debug("scored %s: risk=%.1f confidence=%.1f", f.Name, risk, confidence)

	return &common.Result{
		Risk:       risk,
		Confidence: confidence,
		Executor:   ONNXName,
		Elapsed:    time.Since(start),
	}, nil
}

// Close destroys the session and tensors
func (o *ONNX) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	var errs []error
	if o.session != nil {
		errs = append(errs, o.session.Destroy())
		o.session = nil
	}
	if o.input != nil {
		errs = append(errs, o.input.Destroy())
		o.input = nil
	}
	if o.output != nil {
		errs = append(errs, o.output.Destroy())
		o.output = nil
	}
	return errors.Join(errs...)
}

func decodeImage(path string) (image.Image, error) {
	// #nosec G304 - path comes from a validated common.File
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	return img, err
}

// resolveSharedLibraryPath probes the environment and common install
// locations for the onnxruntime shared library.
func resolveSharedLibraryPath(modelDir string) string {
	if env := strings.TrimSpace(os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")); env != "" {
		return env
	}

	names := []string{
		"libonnxruntime.so",
		"libonnxruntime.dylib",
		"onnxruntime.dll",
	}
	dirs := []string{
		modelDir,
		filepath.Join(modelDir, "lib"),
		"/opt/homebrew/lib",
		"/usr/local/lib",
		"/usr/lib",
	}

	for _, dir := range dirs {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}
