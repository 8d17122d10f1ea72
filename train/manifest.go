package train

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/janelia-flyem/tomoprep/tomo"
)

// hdf5Signature starts the HDF5 superblock, which sits at byte 0 or a power of
// two from 512 on.
var hdf5Signature = []byte("\x89HDF\r\n\x1a\n")

// Manifest is a validated training run ready for the external trainer.
type Manifest struct {
	Tool       string   `json:"tool"`
	Config     Config   `json:"config"`
	TrainFiles []string `json:"train_files"`
	ValFiles   []string `json:"val_files"`
	TotalBytes int64    `json:"total_bytes"`
}

// IsHDF5 returns true if the file carries an HDF5 superblock signature.
func IsHDF5(filename string) (bool, error) {
	f, err := os.Open(filename)
	if err != nil {
		return false, err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return false, err
	}
	sig := make([]byte, len(hdf5Signature))
	for off := int64(0); off+int64(len(sig)) <= fi.Size(); {
		if _, err := f.ReadAt(sig, off); err != nil && err != io.EOF {
			return false, err
		}
		if bytes.Equal(sig, hdf5Signature) {
			return true, nil
		}
		if off == 0 {
			off = 512
		} else {
			off *= 2
		}
	}
	return false, nil
}

// stageFiles expands a glob pattern into a sorted list of HDF5 files.
func stageFiles(stage, pattern string) (files []string, totalBytes int64, err error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, 0, fmt.Errorf("bad %s glob pattern %q: %v", stage, pattern, err)
	}
	if len(matches) == 0 {
		return nil, 0, fmt.Errorf("no %s files match %q", stage, pattern)
	}
	sort.Strings(matches)
	for _, match := range matches {
		abs, err := filepath.Abs(match)
		if err != nil {
			return nil, 0, err
		}
		fi, err := os.Stat(abs)
		if err != nil {
			return nil, 0, err
		}
		if fi.IsDir() {
			continue
		}
		ok, err := IsHDF5(abs)
		if err != nil {
			return nil, 0, fmt.Errorf("can't check %s file %q: %v", stage, abs, err)
		}
		if !ok {
			return nil, 0, fmt.Errorf("%s file %q is not an HDF5 file", stage, abs)
		}
		files = append(files, abs)
		totalBytes += fi.Size()
	}
	if len(files) == 0 {
		return nil, 0, fmt.Errorf("no %s files match %q", stage, pattern)
	}
	return files, totalBytes, nil
}

// BuildManifest validates the configuration and resolves the files of each stage.
func BuildManifest(cfg Config) (*Manifest, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	trainFiles, trainBytes, err := stageFiles("training", cfg.Train.GlobPattern)
	if err != nil {
		return nil, err
	}
	valFiles, valBytes, err := stageFiles("validation", cfg.ValGlobPattern())
	if err != nil {
		return nil, err
	}
	m := &Manifest{
		Tool:       "tomoprep " + tomo.Version().String(),
		Config:     cfg,
		TrainFiles: trainFiles,
		ValFiles:   valFiles,
		TotalBytes: trainBytes,
	}
	if cfg.ValGlobPattern() != cfg.Train.GlobPattern {
		m.TotalBytes += valBytes
	}
	tomo.Infof("Training run: %d training and %d validation files, %s of HDF5 data\n",
		len(trainFiles), len(valFiles), humanize.Bytes(uint64(m.TotalBytes)))
	return m, nil
}

// WriteManifest writes the manifest as indented JSON.
func WriteManifest(w io.Writer, m *Manifest) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}
