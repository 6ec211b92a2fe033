package config

// SampleConfig returns a fully documented configuration file
func SampleConfig() string {
	return `# MediScan configuration
version: "1.0"

analysis:
  # Backend used to score a scan: simulated | onnx
  executor: simulated
  # Fixed delay of the simulated executor
  delay: 2s
  # Deadline for a single analysis, 0 disables it
  timeout: 30s
  # Limit analyses per second (useful with watch), 0 disables it
  max_rps: 0
  burst: 1
  # ONNX backend settings (executor: onnx)
  model_dir: ""
  model_file: model.onnx
  input_name: pixel_values
  output_name: logits
  input_size: 224
  # Path to the onnxruntime shared library, defaults to ONNXRUNTIME_SHARED_LIBRARY_PATH
  library_path: ""

preview:
  # Directory holding preview copies, empty uses a temporary directory
  cache_dir: ""
  max_bytes: 67108864
  thumbnail_width: 48
  # Reject files that do not decode as an image
  require_image: false
  allowed_types: [".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp", ".dcm"]

output:
  # text | json | markdown
  default_format: text
  # auto | always | never
  color_mode: auto
  verbose: false
  # default | high-contrast | minimal
  theme: default
  show_assessments: true
  # Log destination while the interactive screen is open
  log_file: ""

watch:
  debounce: 250ms
  settle_timeout: 30s
`
}

// MinimalSampleConfig returns a configuration with only essential settings
func MinimalSampleConfig() string {
	return `version: "1.0"
analysis:
  executor: simulated
  delay: 2s
output:
  default_format: text
`
}
