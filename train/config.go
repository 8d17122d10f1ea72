/*
	Package train describes a semantic skeletonization training run over 3d
	patches of HDF5 volumes.  tomoprep does not train; it validates a run
	description and writes a manifest that the external trainer consumes.
*/
package train

import (
	"fmt"

	"github.com/janelia-flyem/tomoprep/tomo"
)

// StageConfig holds settings that differ between the training and validation datasets.
type StageConfig struct {
	// GlobPattern selects the HDF5 files of the stage.  If empty for the
	// validation stage, the training pattern is used.
	GlobPattern     string  `toml:"glob_pattern" json:"glob_pattern"`
	SlackAcceptance float64 `toml:"slack_acceptance" json:"patch_slack_acceptance"`
	Shuffle         bool    `toml:"shuffle" json:"shuffle"`
}

// CheckpointConfig describes the best and last model checkpoints.
type CheckpointConfig struct {
	Dir          string `toml:"dir" json:"dirpath"`
	BestName     string `toml:"best_name" json:"best_filename"`
	LastName     string `toml:"last_name" json:"last_filename"`
	Monitor      string `toml:"monitor" json:"monitor"`
	Mode         string `toml:"mode" json:"mode"`
	SaveTopK     int    `toml:"save_top_k" json:"save_top_k"`
	EveryNEpochs int    `toml:"every_n_epochs" json:"every_n_epochs"`
}

// Config is a complete training run description.
type Config struct {
	Seed       int64 `toml:"seed" json:"seed"`
	BatchSize  int   `toml:"batch_size" json:"batch_size"`
	NumWorkers int   `toml:"num_workers" json:"num_workers"`

	PatchShape     tomo.Point3d `toml:"patch_shape" json:"patch_shape"`
	PatchStride    tomo.Point3d `toml:"patch_stride" json:"stride_shape"`
	PatchThreshold float64      `toml:"patch_threshold" json:"patch_threshold"`
	IgnoreIndex    []int64      `toml:"ignore_index" json:"patch_filter_ignore_index"`
	MirrorPadding  tomo.Point3d `toml:"mirror_padding" json:"mirror_padding"`
	PadSize        tomo.Point3d `toml:"pad_size" json:"spatial_pad_size"`

	RawPath    string `toml:"raw_path" json:"raw_internal_path"`
	LabelPath  string `toml:"label_path" json:"label_internal_path"`
	WeightPath string `toml:"weight_path" json:"weight_internal_path"`

	Train StageConfig `toml:"train" json:"train"`
	Val   StageConfig `toml:"val" json:"val"`

	LearningRate   float64 `toml:"learning_rate" json:"learning_rate"`
	VectorChannels int     `toml:"vector_channels" json:"n_vectors_channels"`
	OutChannels    int     `toml:"out_channels" json:"out_channels"`
	ImageKey       string  `toml:"image_key" json:"image_key"`
	VectorsKey     string  `toml:"vectors_key" json:"vectors_gt_key"`
	SkeletonKey    string  `toml:"skeleton_key" json:"skeleton_gt_key"`

	MaxEpochs   int    `toml:"max_epochs" json:"max_epochs"`
	Accelerator string `toml:"accelerator" json:"accelerator"`
	Devices     int    `toml:"devices" json:"devices"`

	Checkpoint    CheckpointConfig `toml:"checkpoint" json:"checkpoint"`
	LoggerName    string           `toml:"logger_name" json:"logger_name"`
	LoggerVersion int              `toml:"logger_version" json:"logger_version"`
}

// DefaultConfig returns the settings used for the point skeletonization network.
func DefaultConfig() Config {
	return Config{
		Seed:       42,
		BatchSize:  1,
		NumWorkers: 4,

		PatchShape:     tomo.Point3d{96, 96, 96},
		PatchStride:    tomo.Point3d{48, 48, 48},
		PatchThreshold: 0.0005,
		IgnoreIndex:    []int64{0},
		MirrorPadding:  tomo.Point3d{16, 32, 32},
		PadSize:        tomo.Point3d{96, 96, 96},

		RawPath:    "background_vector_image",
		LabelPath:  "point_vectors",
		WeightPath: "points_semantic_target",

		Train: StageConfig{GlobPattern: "./test/*.h5", SlackAcceptance: 0.01, Shuffle: true},
		Val:   StageConfig{SlackAcceptance: 0.005},

		LearningRate:   0.0002,
		VectorChannels: 6,
		OutChannels:    4,
		ImageKey:       "raw",
		VectorsKey:     "label",
		SkeletonKey:    "weights",

		MaxEpochs:   2000,
		Accelerator: "gpu",
		Devices:     1,

		Checkpoint: CheckpointConfig{
			Dir:          "./points_checkpoints",
			BestName:     "vit-best",
			LastName:     "vit-last",
			Monitor:      "val_loss",
			Mode:         "min",
			SaveTopK:     1,
			EveryNEpochs: 1,
		},
		LoggerName:    "lightning_logs",
		LoggerVersion: 1,
	}
}

// ValGlobPattern returns the glob pattern selecting validation files.
func (c *Config) ValGlobPattern() string {
	if c.Val.GlobPattern != "" {
		return c.Val.GlobPattern
	}
	return c.Train.GlobPattern
}

func positive(name string, p tomo.Point3d) error {
	if p[0] <= 0 || p[1] <= 0 || p[2] <= 0 {
		return fmt.Errorf("%s must be positive in every dimension, got %s", name, p)
	}
	return nil
}

func probability(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%s must be within [0, 1], got %g", name, v)
	}
	return nil
}

// Validate checks the run description for settings the trainer would reject.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	if c.NumWorkers < 0 {
		return fmt.Errorf("number of workers can't be negative, got %d", c.NumWorkers)
	}
	if err := positive("patch shape", c.PatchShape); err != nil {
		return err
	}
	if err := positive("patch stride", c.PatchStride); err != nil {
		return err
	}
	for dim := 0; dim < 3; dim++ {
		if c.PatchStride[dim] > c.PatchShape[dim] {
			return fmt.Errorf("patch stride %s leaves gaps between patches of shape %s", c.PatchStride, c.PatchShape)
		}
		if c.MirrorPadding[dim] < 0 {
			return fmt.Errorf("mirror padding can't be negative, got %s", c.MirrorPadding)
		}
		if c.PadSize[dim] < c.PatchShape[dim] {
			return fmt.Errorf("pad size %s is smaller than patch shape %s", c.PadSize, c.PatchShape)
		}
	}
	if err := probability("patch threshold", c.PatchThreshold); err != nil {
		return err
	}
	if err := probability("training slack acceptance", c.Train.SlackAcceptance); err != nil {
		return err
	}
	if err := probability("validation slack acceptance", c.Val.SlackAcceptance); err != nil {
		return err
	}
	if c.Train.GlobPattern == "" {
		return fmt.Errorf("no glob pattern given for training files")
	}
	if c.RawPath == "" || c.LabelPath == "" || c.WeightPath == "" {
		return fmt.Errorf("raw, label and weight internal paths must all be set")
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive, got %g", c.LearningRate)
	}
	if c.VectorChannels <= 0 || c.OutChannels <= 0 {
		return fmt.Errorf("network needs positive channel counts, got %d vector and %d out",
			c.VectorChannels, c.OutChannels)
	}
	if c.MaxEpochs <= 0 {
		return fmt.Errorf("max epochs must be positive, got %d", c.MaxEpochs)
	}
	if c.Devices <= 0 {
		return fmt.Errorf("need at least one device, got %d", c.Devices)
	}
	switch c.Accelerator {
	case "gpu", "cpu", "tpu", "mps", "auto":
	default:
		return fmt.Errorf("unknown accelerator %q", c.Accelerator)
	}
	if c.Checkpoint.Dir == "" {
		return fmt.Errorf("no checkpoint directory given")
	}
	switch c.Checkpoint.Mode {
	case "min", "max":
	default:
		return fmt.Errorf("checkpoint mode must be \"min\" or \"max\", got %q", c.Checkpoint.Mode)
	}
	if c.Checkpoint.BestName == c.Checkpoint.LastName {
		return fmt.Errorf("best and last checkpoints share the name %q", c.Checkpoint.BestName)
	}
	return nil
}
